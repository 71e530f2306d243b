package db

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"prioritytracker/internal/model"
)

// tables lists every model in dependency order (parents first).
var tables = []interface{}{
	&model.User{},
	&model.StrategicInitiative{},
	&model.Priority{},
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202510130001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(tables...)
			},
			Rollback: func(tx *gorm.DB) error {
				return dropAll(tx)
			},
		},
		{
			ID: "202510200001_priority_owner_week_index",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasIndex(&model.Priority{}, "idx_priorities_owner_week") {
					return nil
				}
				return tx.Exec("CREATE INDEX idx_priorities_owner_week ON priorities (user_id, week_start)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropIndex(&model.Priority{}, "idx_priorities_owner_week")
			},
		},
	}
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Reset drops every table, including the migration bookkeeping table.
func Reset(db *gorm.DB) error {
	if err := dropAll(db); err != nil {
		return err
	}
	if err := db.Migrator().DropTable(gormigrate.DefaultOptions.TableName); err != nil {
		return fmt.Errorf("drop migrations table: %w", err)
	}
	return nil
}

func dropAll(db *gorm.DB) error {
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
