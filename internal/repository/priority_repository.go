package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prioritytracker/internal/model"
)

// ErrStaleVersion is returned by a conditional update whose expected version no longer matches.
var ErrStaleVersion = errors.New("stale version")

// PriorityFilter narrows List. Nil fields do not filter.
// WeekFrom and WeekTo bound week_start inclusively.
type PriorityFilter struct {
	UserID       *uuid.UUID
	InitiativeID *uuid.UUID
	WeekFrom     *time.Time
	WeekTo       *time.Time
}

// PriorityRepository defines weekly priority persistence operations.
type PriorityRepository interface {
	Create(ctx context.Context, priority *model.Priority) error
	// Update writes every column. A non-zero expectedVersion makes the write
	// conditional on the stored version and yields ErrStaleVersion on mismatch.
	Update(ctx context.Context, priority *model.Priority, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Priority, error)
	List(ctx context.Context, filter PriorityFilter) ([]model.Priority, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountByInitiative(ctx context.Context, initiativeID uuid.UUID) (int64, error)
}

type priorityRepository struct {
	db *gorm.DB
}

// NewPriorityRepository creates a new priority repository.
func NewPriorityRepository(db *gorm.DB) PriorityRepository {
	return &priorityRepository{db: db}
}

func (r *priorityRepository) Create(ctx context.Context, priority *model.Priority) error {
	return r.db.WithContext(ctx).Create(priority).Error
}

func (r *priorityRepository) Update(ctx context.Context, priority *model.Priority, expectedVersion int) error {
	if expectedVersion == 0 {
		return r.db.WithContext(ctx).Save(priority).Error
	}
	res := r.db.WithContext(ctx).Model(&model.Priority{}).
		Where("id = ? AND version = ?", priority.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(priority)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *priorityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Priority{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *priorityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Priority, error) {
	var priority model.Priority
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&priority).Error; err != nil {
		return nil, err
	}
	return &priority, nil
}

// List returns matching priorities, newest week first.
func (r *priorityRepository) List(ctx context.Context, filter PriorityFilter) ([]model.Priority, error) {
	q := r.db.WithContext(ctx).Model(&model.Priority{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.InitiativeID != nil {
		q = q.Where("initiative_id = ?", *filter.InitiativeID)
	}
	if filter.WeekFrom != nil {
		q = q.Where("week_start >= ?", *filter.WeekFrom)
	}
	if filter.WeekTo != nil {
		q = q.Where("week_start <= ?", *filter.WeekTo)
	}

	var priorities []model.Priority
	if err := q.Order("week_start DESC").Order("created_at DESC").Find(&priorities).Error; err != nil {
		return nil, err
	}
	return priorities, nil
}

func (r *priorityRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Priority{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *priorityRepository) CountByInitiative(ctx context.Context, initiativeID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Priority{}).Where("initiative_id = ?", initiativeID).Count(&n).Error
	return n, err
}
