package models

import (
	"time"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type LeadModel struct {
	ID             uint   `gorm:"primaryKey"`
	ContactID      uint   `gorm:"not null;index"`
	Stage          string `gorm:"size:20;not null;index"`
	Source         string `gorm:"size:50"`
	ProductID      *uint  `gorm:"index"`
	EstimatedValue int64  `gorm:"not null;default:0"`
	Currency       string `gorm:"size:3;not null;default:'ILS'"`
	Notes          string `gorm:"type:text"`
	LostReason     string `gorm:"size:500"`
	ClosedAt       *time.Time
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

func (LeadModel) TableName() string {
	return constants.TableLeads
}
