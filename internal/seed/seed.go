// Package seed creates the bootstrap administrator and the default strategic initiatives.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"prioritytracker/internal/config"
	"prioritytracker/internal/model"
	"prioritytracker/internal/repository"
)

// DefaultInitiatives are created, in this order, when no initiative exists yet.
var DefaultInitiatives = []model.StrategicInitiative{
	{Name: "Generación de ingresos", Color: "#10b981"},
	{Name: "Nuevo negocio con clientes actuales", Color: "#3b82f6"},
	{Name: "Eficiencia Operativa", Color: "#f59e0b"},
	{Name: "Analítica Avanzada, Talento y Cultura", Color: "#8b5cf6"},
	{Name: "Orca SNS", Color: "#ec4899"},
}

// Result reports what Run created.
type Result struct {
	AdminCreated       bool `json:"adminCreated"`
	InitiativesCreated int  `json:"initiativesCreated"`
}

// Seeder populates an empty database. Running it again changes nothing.
type Seeder struct {
	users       repository.UserRepository
	initiatives repository.InitiativeRepository
	log         zerolog.Logger
}

// New creates a Seeder.
func New(users repository.UserRepository, initiatives repository.InitiativeRepository, log zerolog.Logger) *Seeder {
	return &Seeder{users: users, initiatives: initiatives, log: log}
}

// Run creates the administrator unless an active admin already exists, and the
// default initiatives unless any initiative exists.
func (s *Seeder) Run(ctx context.Context, admin config.Admin) (Result, error) {
	var res Result

	created, err := s.ensureAdmin(ctx, admin)
	if err != nil {
		return res, err
	}
	res.AdminCreated = created

	n, err := s.ensureInitiatives(ctx)
	if err != nil {
		return res, err
	}
	res.InitiativesCreated = n
	return res, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, admin config.Admin) (bool, error) {
	admins, err := s.users.CountActiveAdmins(ctx, uuid.Nil)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		s.log.Info().Msg("administrator already exists")
		return false, nil
	}

	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		s.log.Warn().Str("email", email).Msg("admin email taken by another account, skipping")
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("find admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Name:         admin.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	s.log.Info().Str("email", email).Msg("administrator created")
	return true, nil
}

func (s *Seeder) ensureInitiatives(ctx context.Context) (int, error) {
	count, err := s.initiatives.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count initiatives: %w", err)
	}
	if count > 0 {
		s.log.Info().Int64("count", count).Msg("initiatives already exist")
		return 0, nil
	}

	err = s.initiatives.WithTransaction(ctx, func(ctx context.Context, repo repository.InitiativeRepository) error {
		for i, def := range DefaultInitiatives {
			initiative := def
			initiative.Order = i + 1
			initiative.IsActive = true
			if err := repo.Create(ctx, &initiative); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create initiatives: %w", err)
	}
	s.log.Info().Int("count", len(DefaultInitiatives)).Msg("default initiatives created")
	return len(DefaultInitiatives), nil
}
