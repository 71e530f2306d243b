package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/metrics"
	"prioritytracker/internal/model"
	"prioritytracker/internal/policy"
	"prioritytracker/internal/repository"
	"prioritytracker/internal/week"
)

// PriorityQuery filters List. WeekStart and WeekEnd bound the week start inclusively.
type PriorityQuery struct {
	UserID       *uuid.UUID
	InitiativeID *uuid.UUID
	WeekStart    *time.Time
	WeekEnd      *time.Time
}

// CreatePriorityInput carries the fields of a new priority.
// UserID defaults to the caller; with no WeekStart the current week is used.
type CreatePriorityInput struct {
	Title                string
	Description          string
	InitiativeID         uuid.UUID
	UserID               *uuid.UUID
	WeekStart            *time.Time
	WeekEnd              *time.Time
	CompletionPercentage int
	Status               model.PriorityStatus
	IsCarriedOver        bool
}

// UpdatePriorityInput is a partial update; nil fields are left untouched.
// A non-nil Version must match the stored one.
type UpdatePriorityInput struct {
	Title                *string
	Description          *string
	InitiativeID         *uuid.UUID
	UserID               *uuid.UUID
	WeekStart            *time.Time
	CompletionPercentage *int
	Status               *model.PriorityStatus
	IsCarriedOver        *bool
	Version              *int
}

// PriorityService exposes the weekly priority store.
type PriorityService interface {
	List(ctx context.Context, p *policy.Principal, q PriorityQuery) ([]model.Priority, error)
	Get(ctx context.Context, p *policy.Principal, id uuid.UUID) (*model.Priority, error)
	Create(ctx context.Context, p *policy.Principal, in CreatePriorityInput) (*model.Priority, error)
	Update(ctx context.Context, p *policy.Principal, id uuid.UUID, in UpdatePriorityInput) (*model.Priority, error)
	Delete(ctx context.Context, p *policy.Principal, id uuid.UUID) error
}

type priorityService struct {
	repo        repository.PriorityRepository
	users       repository.UserRepository
	initiatives repository.InitiativeRepository
	loc         *time.Location
	now         func() time.Time
}

// NewPriorityService builds a PriorityService. Weeks are computed in loc.
func NewPriorityService(repo repository.PriorityRepository, users repository.UserRepository, initiatives repository.InitiativeRepository, loc *time.Location) PriorityService {
	if loc == nil {
		loc = time.UTC
	}
	return &priorityService{
		repo:        repo,
		users:       users,
		initiatives: initiatives,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *priorityService) List(ctx context.Context, p *policy.Principal, q PriorityQuery) ([]model.Priority, error) {
	owner, err := policy.ScopePriorityOwner(p, q.UserID)
	if err != nil {
		return nil, err
	}

	priorities, err := s.repo.List(ctx, repository.PriorityFilter{
		UserID:       owner,
		InitiativeID: q.InitiativeID,
		WeekFrom:     q.WeekStart,
		WeekTo:       q.WeekEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	return priorities, nil
}

func (s *priorityService) Get(ctx context.Context, p *policy.Principal, id uuid.UUID) (*model.Priority, error) {
	if p == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	priority, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizePriority(p, priority.UserID, policy.ActionRead); err != nil {
		return nil, err
	}
	return priority, nil
}

func (s *priorityService) Create(ctx context.Context, p *policy.Principal, in CreatePriorityInput) (*model.Priority, error) {
	if p == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	owner := p.UserID
	if in.UserID != nil {
		owner = *in.UserID
	}
	if err := policy.AuthorizePriority(p, owner, policy.ActionCreate); err != nil {
		return nil, err
	}

	title, err := validTitle(in.Title)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = model.StatusOnTrack
	}
	if !status.Valid() {
		return nil, apperrors.Validation("unknown status")
	}
	w, err := s.resolveWeek(in.WeekStart, in.WeekEnd)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, owner); err != nil {
		return nil, err
	}
	if err := s.ensureInitiative(ctx, in.InitiativeID); err != nil {
		return nil, err
	}

	priority := &model.Priority{
		Title:                title,
		Description:          strings.TrimSpace(in.Description),
		UserID:               owner,
		InitiativeID:         in.InitiativeID,
		WeekStart:            w.Start,
		WeekEnd:              w.End,
		CompletionPercentage: in.CompletionPercentage,
		Status:               status,
		IsCarriedOver:        in.IsCarriedOver,
		Version:              1,
	}
	if err := s.repo.Create(ctx, priority); err != nil {
		return nil, fmt.Errorf("create priority: %w", err)
	}
	metrics.PriorityWrite("create")
	return priority, nil
}

// Update merges the given fields, marks the record as edited and bumps its version.
func (s *priorityService) Update(ctx context.Context, p *policy.Principal, id uuid.UUID, in UpdatePriorityInput) (*model.Priority, error) {
	if p == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	priority, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizePriority(p, priority.UserID, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if in.Version != nil && *in.Version != priority.Version {
		return nil, apperrors.ErrVersionConflict
	}

	if in.Title != nil {
		title, err := validTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		priority.Title = title
	}
	if in.Description != nil {
		priority.Description = strings.TrimSpace(*in.Description)
	}
	if in.UserID != nil && *in.UserID != priority.UserID {
		if err := policy.AuthorizePriorityReassign(p, priority.UserID, *in.UserID); err != nil {
			return nil, err
		}
		if err := s.ensureUser(ctx, *in.UserID); err != nil {
			return nil, err
		}
		priority.UserID = *in.UserID
	}
	if in.InitiativeID != nil && *in.InitiativeID != priority.InitiativeID {
		if err := s.ensureInitiative(ctx, *in.InitiativeID); err != nil {
			return nil, err
		}
		priority.InitiativeID = *in.InitiativeID
	}
	if in.WeekStart != nil {
		w, err := s.resolveWeek(in.WeekStart, nil)
		if err != nil {
			return nil, err
		}
		priority.WeekStart = w.Start
		priority.WeekEnd = w.End
	}
	if in.CompletionPercentage != nil {
		priority.CompletionPercentage = *in.CompletionPercentage
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.Validation("unknown status")
		}
		priority.Status = *in.Status
	}
	if in.IsCarriedOver != nil {
		priority.IsCarriedOver = *in.IsCarriedOver
	}

	expected := 0
	if in.Version != nil {
		expected = priority.Version
	}
	editedAt := s.now()
	priority.WasEdited = true
	priority.LastEditedAt = &editedAt
	priority.Version++

	if err := s.repo.Update(ctx, priority, expected); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, apperrors.ErrVersionConflict
		}
		return nil, fmt.Errorf("update priority: %w", err)
	}
	metrics.PriorityWrite("update")
	return priority, nil
}

func (s *priorityService) Delete(ctx context.Context, p *policy.Principal, id uuid.UUID) error {
	if p == nil {
		return apperrors.ErrUnauthenticated
	}
	priority, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.AuthorizePriority(p, priority.UserID, policy.ActionDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPriorityNotFound
		}
		return fmt.Errorf("delete priority: %w", err)
	}
	metrics.PriorityWrite("delete")
	return nil
}

// resolveWeek validates client supplied boundaries. With neither bound the
// current week is used; with only a start the end is derived.
func (s *priorityService) resolveWeek(start, end *time.Time) (week.Week, error) {
	if start == nil {
		if end != nil {
			return week.Week{}, apperrors.Validation("weekEnd requires weekStart")
		}
		return week.Of(s.now().In(s.loc)), nil
	}

	w := week.Of(start.In(s.loc))
	if !w.Start.Equal(*start) {
		return week.Week{}, apperrors.Validation("weekStart must be a Monday at 00:00:00.000")
	}
	if end != nil && !week.IsWellFormed(start.In(s.loc), *end) {
		return week.Week{}, apperrors.Validation("weekEnd must be the Friday at 23:59:59.999 of the same week")
	}
	return w, nil
}

func (s *priorityService) ensureUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("user does not exist")
		}
		return fmt.Errorf("find user: %w", err)
	}
	return nil
}

func (s *priorityService) ensureInitiative(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperrors.Validation("initiativeId is required")
	}
	if _, err := s.initiatives.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("initiative does not exist")
		}
		return fmt.Errorf("find initiative: %w", err)
	}
	return nil
}

func (s *priorityService) load(ctx context.Context, id uuid.UUID) (*model.Priority, error) {
	priority, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPriorityNotFound
		}
		return nil, fmt.Errorf("find priority: %w", err)
	}
	return priority, nil
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > model.MaxPriorityTitleLength {
		return "", apperrors.Validation(fmt.Sprintf("title must be at most %d characters", model.MaxPriorityTitleLength))
	}
	return title, nil
}
