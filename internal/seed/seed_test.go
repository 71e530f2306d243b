package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"prioritytracker/internal/config"
	"prioritytracker/internal/db"
	"prioritytracker/internal/model"
	"prioritytracker/internal/repository"
)

func TestSeederIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "seed.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	users := repository.NewUserRepository(gormDB)
	initiatives := repository.NewInitiativeRepository(gormDB)
	seeder := New(users, initiatives, zerolog.Nop())
	admin := config.Admin{Email: "Admin@Empresa.com", Password: "admin123", Name: "Administrador"}

	res, err := seeder.Run(ctx, admin)
	require.NoError(t, err)
	assert.True(t, res.AdminCreated)
	assert.Equal(t, len(DefaultInitiatives), res.InitiativesCreated)

	stored, err := users.FindByEmail(ctx, "admin@empresa.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stored.Role)
	assert.True(t, stored.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("admin123")))

	list, err := initiatives.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, initiative := range list {
		assert.Equal(t, i+1, initiative.Order)
		assert.Equal(t, DefaultInitiatives[i].Name, initiative.Name)
	}

	again, err := seeder.Run(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, Result{}, again)

	all, err := initiatives.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
