package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultInitiativeColor is applied when an initiative is created without a color.
const DefaultInitiativeColor = "#3B82F6"

// StrategicInitiative is a company-wide objective that priorities are tagged with.
type StrategicInitiative struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Color       string    `json:"color" gorm:"size:16;not null;default:'#3B82F6'"`
	Order       int       `json:"order" gorm:"column:display_order;not null;index"`
	IsActive    bool      `json:"isActive" gorm:"not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName keeps the table name stable across drivers.
func (StrategicInitiative) TableName() string {
	return "strategic_initiatives"
}

// BeforeCreate sets UUID before creating the record.
func (i *StrategicInitiative) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Color == "" {
		i.Color = DefaultInitiativeColor
	}
	return nil
}
