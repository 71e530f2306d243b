package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriorityStatus represents the delivery status of a weekly priority.
type PriorityStatus string

const (
	StatusOnTrack   PriorityStatus = "EN_TIEMPO"
	StatusAtRisk    PriorityStatus = "EN_RIESGO"
	StatusBlocked   PriorityStatus = "BLOQUEADO"
	StatusCompleted PriorityStatus = "COMPLETADO"
)

// Valid reports whether s is a known status.
func (s PriorityStatus) Valid() bool {
	switch s {
	case StatusOnTrack, StatusAtRisk, StatusBlocked, StatusCompleted:
		return true
	}
	return false
}

// MaxPriorityTitleLength bounds Priority.Title.
const MaxPriorityTitleLength = 150

// Priority is a weekly commitment owned by a single user.
// WeekStart is always a Monday at 00:00:00.000 and WeekEnd the Friday of the
// same week at 23:59:59.999.
type Priority struct {
	ID                   uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Title                string         `json:"title" gorm:"size:150;not null"`
	Description          string         `json:"description" gorm:"type:text"`
	UserID               uuid.UUID      `json:"userId" gorm:"type:char(36);not null;index"`
	InitiativeID         uuid.UUID      `json:"initiativeId" gorm:"type:char(36);not null;index"`
	WeekStart            time.Time      `json:"weekStart" gorm:"not null;index;precision:3"`
	WeekEnd              time.Time      `json:"weekEnd" gorm:"not null;precision:3"`
	CompletionPercentage int            `json:"completionPercentage" gorm:"not null;default:0"`
	Status               PriorityStatus `json:"status" gorm:"type:varchar(20);not null;default:'EN_TIEMPO';index"`
	WasEdited            bool           `json:"wasEdited" gorm:"not null;default:false"`
	LastEditedAt         *time.Time     `json:"lastEditedAt,omitempty" gorm:"precision:3"`
	IsCarriedOver        bool           `json:"isCarriedOver" gorm:"not null;default:false"`
	Version              int            `json:"version" gorm:"not null;default:1"`
	CreatedAt            time.Time      `json:"createdAt" gorm:"precision:3"`
	UpdatedAt            time.Time      `json:"updatedAt" gorm:"precision:3"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Priority) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusOnTrack
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}

// IsCompleted reports whether the priority is in the COMPLETADO status.
func (p *Priority) IsCompleted() bool {
	return p.Status == StatusCompleted
}
