package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/model"
	"prioritytracker/internal/policy"
	"prioritytracker/internal/repository"
	"prioritytracker/internal/week"
)

var mexico = time.FixedZone("CST", -6*60*60)

type priorityFixture struct {
	repo        *MockPriorityRepository
	users       *MockUserRepository
	initiatives *MockInitiativeRepository
	service     *priorityService
}

func newPriorityFixture(now time.Time) *priorityFixture {
	f := &priorityFixture{
		repo:        new(MockPriorityRepository),
		users:       new(MockUserRepository),
		initiatives: new(MockInitiativeRepository),
	}
	f.service = NewPriorityService(f.repo, f.users, f.initiatives, mexico).(*priorityService)
	f.service.now = func() time.Time { return now }
	return f
}

func (f *priorityFixture) resolvable(owner, initiative uuid.UUID) {
	f.users.On("FindByID", mock.Anything, owner).Return(&model.User{ID: owner}, nil)
	f.initiatives.On("FindByID", mock.Anything, initiative).Return(&model.StrategicInitiative{ID: initiative}, nil)
}

func TestPriorityService_Create(t *testing.T) {
	// Wednesday 15 Oct 2025, 10:00 in Mexico City
	now := time.Date(2025, time.October, 15, 10, 0, 0, 0, mexico)
	current := week.Of(now)
	initiative := uuid.New()

	t.Run("defaults to the current week", func(t *testing.T) {
		f := newPriorityFixture(now)
		p := userPrincipal()
		f.resolvable(p.UserID, initiative)
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Priority")).Return(nil)

		created, err := f.service.Create(context.Background(), p, CreatePriorityInput{Title: "Cerrar Q4", InitiativeID: initiative})
		require.NoError(t, err)

		assert.Equal(t, p.UserID, created.UserID)
		assert.True(t, current.Start.Equal(created.WeekStart))
		assert.True(t, current.End.Equal(created.WeekEnd))
		assert.Equal(t, week.Span, created.WeekEnd.Sub(created.WeekStart))
		assert.Equal(t, model.StatusOnTrack, created.Status)
		assert.False(t, created.WasEdited)
		assert.False(t, created.IsCarriedOver)
		assert.Equal(t, 1, created.Version)
	})

	t.Run("derives weekEnd from weekStart", func(t *testing.T) {
		f := newPriorityFixture(now)
		p := userPrincipal()
		f.resolvable(p.UserID, initiative)
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Priority")).Return(nil)
		next := current.Next()

		created, err := f.service.Create(context.Background(), p, CreatePriorityInput{Title: "t", InitiativeID: initiative, WeekStart: &next.Start})
		require.NoError(t, err)
		assert.True(t, next.End.Equal(created.WeekEnd))
	})

	t.Run("percentage above 100 is stored as given", func(t *testing.T) {
		f := newPriorityFixture(now)
		p := userPrincipal()
		f.resolvable(p.UserID, initiative)
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Priority")).Return(nil)

		created, err := f.service.Create(context.Background(), p, CreatePriorityInput{Title: "t", InitiativeID: initiative, CompletionPercentage: 150})
		require.NoError(t, err)
		assert.Equal(t, 150, created.CompletionPercentage)
	})

	t.Run("admin creates on behalf of a user", func(t *testing.T) {
		f := newPriorityFixture(now)
		owner := uuid.New()
		f.resolvable(owner, initiative)
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Priority")).Return(nil)

		created, err := f.service.Create(context.Background(), adminPrincipal(), CreatePriorityInput{Title: "t", InitiativeID: initiative, UserID: &owner})
		require.NoError(t, err)
		assert.Equal(t, owner, created.UserID)
	})

	rejections := []struct {
		name      string
		principal *policy.Principal
		input     func(p *policy.Principal) CreatePriorityInput
		wantKind  error
	}{
		{
			name:      "user creates for someone else",
			principal: userPrincipal(),
			input: func(*policy.Principal) CreatePriorityInput {
				return CreatePriorityInput{Title: "t", InitiativeID: initiative, UserID: ptr(uuid.New())}
			},
			wantKind: apperrors.ErrForbidden,
		},
		{
			name:      "empty title",
			principal: userPrincipal(),
			input: func(*policy.Principal) CreatePriorityInput {
				return CreatePriorityInput{Title: "   ", InitiativeID: initiative}
			},
			wantKind: apperrors.ErrValidation,
		},
		{
			name:      "title too long",
			principal: userPrincipal(),
			input: func(*policy.Principal) CreatePriorityInput {
				return CreatePriorityInput{Title: strings.Repeat("x", 151), InitiativeID: initiative}
			},
			wantKind: apperrors.ErrValidation,
		},
		{
			name:      "weekStart not a Monday",
			principal: userPrincipal(),
			input: func(*policy.Principal) CreatePriorityInput {
				return CreatePriorityInput{Title: "t", InitiativeID: initiative, WeekStart: ptr(current.Start.AddDate(0, 0, 1))}
			},
			wantKind: apperrors.ErrValidation,
		},
		{
			name:      "weekEnd from another week",
			principal: userPrincipal(),
			input: func(*policy.Principal) CreatePriorityInput {
				return CreatePriorityInput{Title: "t", InitiativeID: initiative, WeekStart: &current.Start, WeekEnd: ptr(current.End.AddDate(0, 0, 7))}
			},
			wantKind: apperrors.ErrValidation,
		},
		{
			name:      "weekEnd short of Friday close",
			principal: userPrincipal(),
			input: func(*policy.Principal) CreatePriorityInput {
				return CreatePriorityInput{Title: "t", InitiativeID: initiative, WeekStart: &current.Start, WeekEnd: ptr(current.End.Add(-time.Millisecond))}
			},
			wantKind: apperrors.ErrValidation,
		},
		{
			name:      "unknown status",
			principal: userPrincipal(),
			input: func(*policy.Principal) CreatePriorityInput {
				return CreatePriorityInput{Title: "t", InitiativeID: initiative, Status: "DONE"}
			},
			wantKind: apperrors.ErrValidation,
		},
		{
			name:      "anonymous",
			principal: nil,
			input: func(*policy.Principal) CreatePriorityInput {
				return CreatePriorityInput{Title: "t", InitiativeID: initiative}
			},
			wantKind: apperrors.ErrUnauthenticated,
		},
	}

	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			f := newPriorityFixture(now)
			_, err := f.service.Create(context.Background(), tt.principal, tt.input(tt.principal))
			assert.ErrorIs(t, err, tt.wantKind)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("unresolvable initiative", func(t *testing.T) {
		f := newPriorityFixture(now)
		p := userPrincipal()
		missing := uuid.New()
		f.users.On("FindByID", mock.Anything, p.UserID).Return(&model.User{ID: p.UserID}, nil)
		f.initiatives.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.service.Create(context.Background(), p, CreatePriorityInput{Title: "t", InitiativeID: missing})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestPriorityService_Update(t *testing.T) {
	now := time.Date(2025, time.October, 15, 10, 0, 0, 0, mexico)
	current := week.Of(now)
	owner := &policy.Principal{UserID: uuid.New(), Role: model.RoleUser}

	stored := func() *model.Priority {
		return &model.Priority{
			ID:           uuid.New(),
			Title:        "t",
			UserID:       owner.UserID,
			InitiativeID: uuid.New(),
			WeekStart:    current.Start,
			WeekEnd:      current.End,
			Status:       model.StatusOnTrack,
			Version:      3,
		}
	}

	t.Run("marks edited and re-derives the week", func(t *testing.T) {
		f := newPriorityFixture(now)
		existing := stored()
		f.repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
		f.repo.On("Update", mock.Anything, existing, 0).Return(nil)
		next := current.Next()

		updated, err := f.service.Update(context.Background(), owner, existing.ID, UpdatePriorityInput{
			WeekStart:            &next.Start,
			CompletionPercentage: ptr(80),
			Status:               ptr(model.StatusAtRisk),
		})
		require.NoError(t, err)

		assert.True(t, updated.WasEdited)
		require.NotNil(t, updated.LastEditedAt)
		assert.True(t, now.Equal(*updated.LastEditedAt))
		assert.Equal(t, 4, updated.Version)
		assert.True(t, next.End.Equal(updated.WeekEnd))
		assert.Equal(t, 80, updated.CompletionPercentage)
		assert.Equal(t, model.StatusAtRisk, updated.Status)
	})

	t.Run("stale version", func(t *testing.T) {
		f := newPriorityFixture(now)
		existing := stored()
		f.repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

		_, err := f.service.Update(context.Background(), owner, existing.ID, UpdatePriorityInput{Title: ptr("x"), Version: ptr(2)})
		assert.Equal(t, apperrors.ErrVersionConflict, err)
	})

	t.Run("matching version is checked on write", func(t *testing.T) {
		f := newPriorityFixture(now)
		existing := stored()
		f.repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
		f.repo.On("Update", mock.Anything, existing, 3).Return(repository.ErrStaleVersion)

		_, err := f.service.Update(context.Background(), owner, existing.ID, UpdatePriorityInput{Title: ptr("x"), Version: ptr(3)})
		assert.Equal(t, apperrors.ErrVersionConflict, err)
	})

	t.Run("foreign priority", func(t *testing.T) {
		f := newPriorityFixture(now)
		existing := stored()
		f.repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

		_, err := f.service.Update(context.Background(), userPrincipal(), existing.ID, UpdatePriorityInput{Title: ptr("x")})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("user cannot reassign", func(t *testing.T) {
		f := newPriorityFixture(now)
		existing := stored()
		f.repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

		_, err := f.service.Update(context.Background(), owner, existing.ID, UpdatePriorityInput{UserID: ptr(uuid.New())})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("missing priority", func(t *testing.T) {
		f := newPriorityFixture(now)
		id := uuid.New()
		f.repo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.service.Update(context.Background(), owner, id, UpdatePriorityInput{})
		assert.Equal(t, apperrors.ErrPriorityNotFound, err)
	})
}

func TestPriorityService_List(t *testing.T) {
	now := time.Date(2025, time.October, 15, 10, 0, 0, 0, mexico)
	p := userPrincipal()

	t.Run("regular user is scoped to self", func(t *testing.T) {
		f := newPriorityFixture(now)
		f.repo.On("List", mock.Anything, mock.MatchedBy(func(filter repository.PriorityFilter) bool {
			return filter.UserID != nil && *filter.UserID == p.UserID
		})).Return([]model.Priority{}, nil)

		_, err := f.service.List(context.Background(), p, PriorityQuery{})
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("regular user asking for another user", func(t *testing.T) {
		f := newPriorityFixture(now)
		_, err := f.service.List(context.Background(), p, PriorityQuery{UserID: ptr(uuid.New())})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("admin sees everyone in range", func(t *testing.T) {
		f := newPriorityFixture(now)
		from := week.Of(now).Start
		f.repo.On("List", mock.Anything, mock.MatchedBy(func(filter repository.PriorityFilter) bool {
			return filter.UserID == nil && filter.WeekFrom != nil && filter.WeekFrom.Equal(from) && filter.WeekTo == nil
		})).Return([]model.Priority{{}, {}}, nil)

		list, err := f.service.List(context.Background(), adminPrincipal(), PriorityQuery{WeekStart: &from})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestPriorityService_Delete(t *testing.T) {
	f := newPriorityFixture(time.Now())
	owner := userPrincipal()
	existing := &model.Priority{ID: uuid.New(), UserID: owner.UserID}
	f.repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("Delete", mock.Anything, existing.ID).Return(nil)

	assert.ErrorIs(t, f.service.Delete(context.Background(), userPrincipal(), existing.ID), apperrors.ErrForbidden)
	assert.NoError(t, f.service.Delete(context.Background(), owner, existing.ID))
	assert.NoError(t, f.service.Delete(context.Background(), adminPrincipal(), existing.ID))
}
