package models

import (
	"time"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type DealModel struct {
	ID                uint   `gorm:"primaryKey"`
	ContactID         uint   `gorm:"not null;index"`
	LeadID            *uint  `gorm:"index"`
	ProductID         *uint  `gorm:"index"`
	Title             string `gorm:"size:200;not null"`
	Amount            int64  `gorm:"not null"`
	Discount          int64  `gorm:"not null;default:0"`
	Currency          string `gorm:"size:3;not null;default:'ILS'"`
	Status            string `gorm:"size:20;not null;index"`
	ExpectedCloseDate *time.Time
	ClosedAt          *time.Time `gorm:"index"`
	Notes             string     `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (DealModel) TableName() string {
	return constants.TableDeals
}
