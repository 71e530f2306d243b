package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"prioritytracker/internal/db"
	"prioritytracker/internal/model"
	"prioritytracker/internal/week"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	admin := &model.User{Name: "Zoe", Email: "zoe@empresa.com", PasswordHash: "x", Role: model.RoleAdmin, IsActive: true}
	ana := &model.User{Name: "Ana", Email: "ana@empresa.com", PasswordHash: "x", Role: model.RoleUser, IsActive: true}
	gone := &model.User{Name: "Beto", Email: "beto@empresa.com", PasswordHash: "x", Role: model.RoleAdmin, IsActive: false}
	for _, u := range []*model.User{admin, ana, gone} {
		require.NoError(t, repo.Create(ctx, u))
		require.NotEqual(t, uuid.Nil, u.ID)
	}

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Ana", "Beto", "Zoe"}, []string{all[0].Name, all[1].Name, all[2].Name})

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	found, err := repo.FindByEmail(ctx, "ana@empresa.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, found.ID)
	assert.False(t, found.IsAdmin())

	n, err := repo.CountActiveAdmins(ctx, admin.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.CountActiveAdmins(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, gone.ID))
	_, err = repo.FindByID(ctx, gone.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, gone.ID), gorm.ErrRecordNotFound)
}

func seedInitiatives(t *testing.T, repo InitiativeRepository, names ...string) []*model.StrategicInitiative {
	t.Helper()
	out := make([]*model.StrategicInitiative, 0, len(names))
	for i, name := range names {
		in := &model.StrategicInitiative{Name: name, Order: i + 1, IsActive: true}
		require.NoError(t, repo.Create(context.Background(), in))
		out = append(out, in)
	}
	return out
}

func names(list []model.StrategicInitiative) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].Name
	}
	return out
}

func TestInitiativeRepository_MaxOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewInitiativeRepository(newTestDB(t))

	maxOrder, err := repo.MaxOrder(ctx)
	require.NoError(t, err)
	assert.Zero(t, maxOrder)

	seedInitiatives(t, repo, "A", "B")
	maxOrder, err = repo.MaxOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, maxOrder)

	created := seedInitiatives(t, repo, "C")
	assert.Equal(t, model.DefaultInitiativeColor, created[0].Color)
}

func TestInitiativeRepository_Reorder(t *testing.T) {
	ctx := context.Background()
	repo := NewInitiativeRepository(newTestDB(t))
	in := seedInitiatives(t, repo, "A", "B", "C")

	require.NoError(t, repo.Reorder(ctx, []uuid.UUID{in[2].ID, in[0].ID, in[1].ID}))
	list, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, names(list))
	assert.Equal(t, 1, list[0].Order)
	assert.Equal(t, 3, list[2].Order)

	err = repo.Reorder(ctx, []uuid.UUID{in[0].ID, uuid.New()})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	list, err = repo.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, names(list), "failed reorder must not change anything")
}

func TestInitiativeRepository_ReorderSubset(t *testing.T) {
	ctx := context.Background()
	repo := NewInitiativeRepository(newTestDB(t))
	in := seedInitiatives(t, repo, "A", "B", "C", "D")

	require.NoError(t, repo.Reorder(ctx, []uuid.UUID{in[3].ID, in[1].ID}))
	list, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "A", "C"}, names(list))
	for i := range list {
		assert.Equal(t, i+1, list[i].Order, "orders stay unique and sequential")
	}
}

func TestInitiativeRepository_Move(t *testing.T) {
	ctx := context.Background()
	repo := NewInitiativeRepository(newTestDB(t))
	in := seedInitiatives(t, repo, "A", "B", "C")

	require.NoError(t, repo.Move(ctx, in[2].ID, DirectionUp))
	list, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, names(list))

	require.NoError(t, repo.Move(ctx, in[0].ID, DirectionUp))
	list, err = repo.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, names(list), "moving past the top is a no-op")

	require.NoError(t, repo.Move(ctx, in[0].ID, DirectionDown))
	list, err = repo.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, names(list))
	for i := range list {
		assert.Equal(t, i+1, list[i].Order)
	}

	assert.ErrorIs(t, repo.Move(ctx, uuid.New(), DirectionDown), gorm.ErrRecordNotFound)
}

func TestInitiativeRepository_ListActiveOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewInitiativeRepository(newTestDB(t))
	in := seedInitiatives(t, repo, "A", "B")

	in[0].IsActive = false
	require.NoError(t, repo.Update(ctx, in[0]))

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, names(active))
}

func TestPriorityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPriorityRepository(newTestDB(t))

	ana, luis := uuid.New(), uuid.New()
	sales, ops := uuid.New(), uuid.New()
	w1 := week.Of(time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC))
	w2 := w1.Next()
	w3 := w2.Next()

	mk := func(owner, initiative uuid.UUID, w week.Week, title string) *model.Priority {
		p := &model.Priority{Title: title, UserID: owner, InitiativeID: initiative, WeekStart: w.Start, WeekEnd: w.End}
		require.NoError(t, repo.Create(ctx, p))
		return p
	}
	mk(ana, sales, w1, "a1")
	mk(ana, ops, w2, "a2")
	first := mk(ana, sales, w3, "a3-first")
	time.Sleep(5 * time.Millisecond)
	mk(ana, sales, w3, "a3-second")
	mk(luis, sales, w2, "l2")

	assert.Equal(t, model.StatusOnTrack, first.Status)
	assert.Equal(t, 1, first.Version)

	all, err := repo.List(ctx, PriorityFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "a3-second", all[0].Title)
	assert.Equal(t, "a3-first", all[1].Title)
	assert.Equal(t, "a1", all[4].Title)

	own, err := repo.List(ctx, PriorityFilter{UserID: &ana})
	require.NoError(t, err)
	assert.Len(t, own, 4)

	from, to := w2.Start, w2.Start
	ranged, err := repo.List(ctx, PriorityFilter{WeekFrom: &from, WeekTo: &to})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	fromOnly := w2.Start
	later, err := repo.List(ctx, PriorityFilter{UserID: &ana, WeekFrom: &fromOnly, InitiativeID: &sales})
	require.NoError(t, err)
	assert.Len(t, later, 2)

	n, err := repo.CountByUser(ctx, luis)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.CountByInitiative(ctx, ops)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPriorityRepository_ConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewPriorityRepository(newTestDB(t))
	w := week.Of(time.Date(2025, time.October, 13, 0, 0, 0, 0, time.UTC))

	p := &model.Priority{Title: "t", UserID: uuid.New(), InitiativeID: uuid.New(), WeekStart: w.Start, WeekEnd: w.End}
	require.NoError(t, repo.Create(ctx, p))

	p.Title = "edited"
	p.Version = 2
	p.WasEdited = true
	require.NoError(t, repo.Update(ctx, p, 1))

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Title)
	assert.Equal(t, 2, stored.Version)
	assert.True(t, stored.WasEdited)

	p.Title = "stale"
	p.Version = 2
	assert.ErrorIs(t, repo.Update(ctx, p, 1), ErrStaleVersion)

	p.Title = "forced"
	p.Version = 3
	require.NoError(t, repo.Update(ctx, p, 0))
	stored, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "forced", stored.Title)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), gorm.ErrRecordNotFound)
}
