package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prioritytracker/internal/cache"
	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/metrics"
	"prioritytracker/internal/model"
	"prioritytracker/internal/policy"
	"prioritytracker/internal/repository"
)

const initiativeCacheTTL = 5 * time.Minute

const (
	initiativesActiveKey = "initiatives:active"
	initiativesAllKey    = "initiatives:all"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CreateInitiativeInput carries the fields of a new initiative.
type CreateInitiativeInput struct {
	Name        string
	Description string
	Color       string
	IsActive    *bool
}

// UpdateInitiativeInput is a partial update; nil fields are left untouched.
type UpdateInitiativeInput struct {
	Name        *string
	Description *string
	Color       *string
	Order       *int
	IsActive    *bool
}

// InitiativeService exposes strategic initiative operations.
type InitiativeService interface {
	List(ctx context.Context, p *policy.Principal, activeOnly bool) ([]model.StrategicInitiative, error)
	Get(ctx context.Context, p *policy.Principal, id uuid.UUID) (*model.StrategicInitiative, error)
	Create(ctx context.Context, p *policy.Principal, in CreateInitiativeInput) (*model.StrategicInitiative, error)
	Update(ctx context.Context, p *policy.Principal, id uuid.UUID, in UpdateInitiativeInput) (*model.StrategicInitiative, error)
	Delete(ctx context.Context, p *policy.Principal, id uuid.UUID) error
	Reorder(ctx context.Context, p *policy.Principal, ids []uuid.UUID) ([]model.StrategicInitiative, error)
	Move(ctx context.Context, p *policy.Principal, id uuid.UUID, dir repository.Direction) ([]model.StrategicInitiative, error)
}

type initiativeService struct {
	repo       repository.InitiativeRepository
	priorities repository.PriorityRepository
	cache      *cache.Client
}

// NewInitiativeService builds an InitiativeService.
func NewInitiativeService(repo repository.InitiativeRepository, priorities repository.PriorityRepository, cache *cache.Client) InitiativeService {
	return &initiativeService{repo: repo, priorities: priorities, cache: cache}
}

func listKey(activeOnly bool) string {
	if activeOnly {
		return initiativesActiveKey
	}
	return initiativesAllKey
}

func (s *initiativeService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, initiativesActiveKey, initiativesAllKey)
}

func (s *initiativeService) List(ctx context.Context, p *policy.Principal, activeOnly bool) ([]model.StrategicInitiative, error) {
	if err := policy.AuthorizeInitiative(p, policy.ActionRead); err != nil {
		return nil, err
	}

	var cached []model.StrategicInitiative
	if s.cache.GetJSON(ctx, listKey(activeOnly), &cached) {
		return cached, nil
	}

	initiatives, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list initiatives: %w", err)
	}
	s.cache.SetJSON(ctx, listKey(activeOnly), initiatives, initiativeCacheTTL)
	return initiatives, nil
}

func (s *initiativeService) Get(ctx context.Context, p *policy.Principal, id uuid.UUID) (*model.StrategicInitiative, error) {
	if err := policy.AuthorizeInitiative(p, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Create appends the initiative after the current last one.
func (s *initiativeService) Create(ctx context.Context, p *policy.Principal, in CreateInitiativeInput) (*model.StrategicInitiative, error) {
	if err := policy.AuthorizeInitiative(p, policy.ActionCreate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = model.DefaultInitiativeColor
	}
	if !hexColor.MatchString(color) {
		return nil, apperrors.Validation("color must be a hex value like #3B82F6")
	}

	initiative := &model.StrategicInitiative{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       color,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.InitiativeRepository) error {
		maxOrder, err := repo.MaxOrder(ctx)
		if err != nil {
			return err
		}
		initiative.Order = maxOrder + 1
		return repo.Create(ctx, initiative)
	})
	if err != nil {
		return nil, fmt.Errorf("create initiative: %w", err)
	}
	s.invalidate(ctx)
	return initiative, nil
}

func (s *initiativeService) Update(ctx context.Context, p *policy.Principal, id uuid.UUID, in UpdateInitiativeInput) (*model.StrategicInitiative, error) {
	if err := policy.AuthorizeInitiative(p, policy.ActionUpdate); err != nil {
		return nil, err
	}

	initiative, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Validation("name is required")
		}
		initiative.Name = name
	}
	if in.Description != nil {
		initiative.Description = strings.TrimSpace(*in.Description)
	}
	if in.Color != nil {
		if !hexColor.MatchString(*in.Color) {
			return nil, apperrors.Validation("color must be a hex value like #3B82F6")
		}
		initiative.Color = *in.Color
	}
	if in.Order != nil {
		if *in.Order < 1 {
			return nil, apperrors.Validation("order must be positive")
		}
		initiative.Order = *in.Order
	}
	if in.IsActive != nil {
		initiative.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, initiative); err != nil {
		return nil, fmt.Errorf("update initiative: %w", err)
	}
	s.invalidate(ctx)
	return initiative, nil
}

// Delete refuses initiatives still referenced by priorities; deactivate those instead.
func (s *initiativeService) Delete(ctx context.Context, p *policy.Principal, id uuid.UUID) error {
	if err := policy.AuthorizeInitiative(p, policy.ActionDelete); err != nil {
		return err
	}

	inUse, err := s.priorities.CountByInitiative(ctx, id)
	if err != nil {
		return fmt.Errorf("count priorities: %w", err)
	}
	if inUse > 0 {
		return apperrors.ErrInitiativeInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInitiativeNotFound
		}
		return fmt.Errorf("delete initiative: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// Reorder assigns ids their 1-based position; initiatives left out follow in
// their current order. Either every initiative is renumbered or none is.
func (s *initiativeService) Reorder(ctx context.Context, p *policy.Principal, ids []uuid.UUID) ([]model.StrategicInitiative, error) {
	if err := policy.AuthorizeInitiative(p, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperrors.Validation("ids must not be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, apperrors.Validation("ids must not contain duplicates")
		}
		seen[id] = struct{}{}
	}

	if err := s.repo.Reorder(ctx, ids); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInitiativeNotFound
		}
		return nil, fmt.Errorf("reorder initiatives: %w", err)
	}
	s.invalidate(ctx)
	metrics.InitiativeReordered()
	return s.fresh(ctx)
}

// Move shifts one initiative up or down; moving past either end changes nothing.
func (s *initiativeService) Move(ctx context.Context, p *policy.Principal, id uuid.UUID, dir repository.Direction) ([]model.StrategicInitiative, error) {
	if err := policy.AuthorizeInitiative(p, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if dir != repository.DirectionUp && dir != repository.DirectionDown {
		return nil, apperrors.Validation("direction must be up or down")
	}

	if err := s.repo.Move(ctx, id, dir); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInitiativeNotFound
		}
		return nil, fmt.Errorf("move initiative: %w", err)
	}
	s.invalidate(ctx)
	metrics.InitiativeReordered()
	return s.fresh(ctx)
}

func (s *initiativeService) fresh(ctx context.Context) ([]model.StrategicInitiative, error) {
	initiatives, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list initiatives: %w", err)
	}
	return initiatives, nil
}

func (s *initiativeService) load(ctx context.Context, id uuid.UUID) (*model.StrategicInitiative, error) {
	initiative, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInitiativeNotFound
		}
		return nil, fmt.Errorf("find initiative: %w", err)
	}
	return initiative, nil
}
