package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prioritytracker/internal/model"
)

// Direction moves an initiative one slot in the ordered list.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// InitiativeRepository defines strategic initiative persistence operations.
type InitiativeRepository interface {
	Create(ctx context.Context, initiative *model.StrategicInitiative) error
	Update(ctx context.Context, initiative *model.StrategicInitiative) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StrategicInitiative, error)
	List(ctx context.Context, activeOnly bool) ([]model.StrategicInitiative, error)
	Count(ctx context.Context) (int64, error)
	MaxOrder(ctx context.Context) (int, error)
	// Reorder gives ids[i] the order i+1 atomically. Unknown ids fail with gorm.ErrRecordNotFound.
	Reorder(ctx context.Context, ids []uuid.UUID) error
	// Move swaps the initiative with its neighbour and renumbers every row 1..n.
	Move(ctx context.Context, id uuid.UUID, dir Direction) error
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo InitiativeRepository) error) error
}

type initiativeRepository struct {
	db *gorm.DB
}

// NewInitiativeRepository creates a new initiative repository.
func NewInitiativeRepository(db *gorm.DB) InitiativeRepository {
	return &initiativeRepository{db: db}
}

func (r *initiativeRepository) Create(ctx context.Context, initiative *model.StrategicInitiative) error {
	return r.db.WithContext(ctx).Create(initiative).Error
}

func (r *initiativeRepository) Update(ctx context.Context, initiative *model.StrategicInitiative) error {
	return r.db.WithContext(ctx).Save(initiative).Error
}

func (r *initiativeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.StrategicInitiative{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *initiativeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StrategicInitiative, error) {
	var initiative model.StrategicInitiative
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&initiative).Error; err != nil {
		return nil, err
	}
	return &initiative, nil
}

// List returns initiatives ordered by display order.
func (r *initiativeRepository) List(ctx context.Context, activeOnly bool) ([]model.StrategicInitiative, error) {
	var initiatives []model.StrategicInitiative
	q := r.db.WithContext(ctx).Order("display_order ASC").Order("created_at ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&initiatives).Error; err != nil {
		return nil, err
	}
	return initiatives, nil
}

func (r *initiativeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.StrategicInitiative{}).Count(&n).Error
	return n, err
}

// MaxOrder returns the highest display order, or 0 when the table is empty.
func (r *initiativeRepository) MaxOrder(ctx context.Context) (int, error) {
	var maxOrder sql.NullInt64
	row := r.db.WithContext(ctx).Model(&model.StrategicInitiative{}).
		Select("MAX(display_order)").
		Row()
	if err := row.Scan(&maxOrder); err != nil {
		return 0, err
	}
	return int(maxOrder.Int64), nil
}

func (r *initiativeRepository) Reorder(ctx context.Context, ids []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&model.StrategicInitiative{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(ids)) {
			return gorm.ErrRecordNotFound
		}

		// Initiatives missing from ids keep their relative order after the listed ones.
		var rest []model.StrategicInitiative
		if err := tx.Where("id NOT IN ?", ids).
			Order("display_order ASC").Order("created_at ASC").
			Find(&rest).Error; err != nil {
			return err
		}
		order := append([]uuid.UUID(nil), ids...)
		for _, in := range rest {
			order = append(order, in.ID)
		}

		for i, id := range order {
			if err := setOrder(tx, id, i+1); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *initiativeRepository) Move(ctx context.Context, id uuid.UUID, dir Direction) error {
	if dir != DirectionUp && dir != DirectionDown {
		return errors.New("unknown direction")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var all []model.StrategicInitiative
		if err := tx.Order("display_order ASC").Order("created_at ASC").Find(&all).Error; err != nil {
			return err
		}

		idx := -1
		for i := range all {
			if all[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return gorm.ErrRecordNotFound
		}

		target := idx - 1
		if dir == DirectionDown {
			target = idx + 1
		}
		if target >= 0 && target < len(all) {
			all[idx], all[target] = all[target], all[idx]
		}

		for i := range all {
			if all[i].Order == i+1 {
				continue
			}
			if err := setOrder(tx, all[i].ID, i+1); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithTransaction executes a function within a database transaction.
func (r *initiativeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo InitiativeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &initiativeRepository{db: tx})
	})
}

func setOrder(tx *gorm.DB, id uuid.UUID, order int) error {
	return tx.Model(&model.StrategicInitiative{}).
		Where("id = ?", id).
		Update("display_order", order).Error
}
