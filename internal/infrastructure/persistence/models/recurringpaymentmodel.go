package models

import (
	"time"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type RecurringPaymentModel struct {
	ID                uint   `gorm:"primaryKey"`
	ContactID         uint   `gorm:"not null;index"`
	ProductID         *uint  `gorm:"index"`
	Description       string `gorm:"size:500"`
	Amount            int64  `gorm:"not null"`
	Currency          string `gorm:"size:3;not null;default:'ILS'"`
	Frequency         string `gorm:"size:20;not null"`
	AnchorDay         int    `gorm:"not null"`
	StartDate         time.Time
	NextChargeDate    time.Time `gorm:"index"`
	RetryAt           *time.Time
	EndDate           *time.Time
	MaxCharges        *int
	ChargeCount       int `gorm:"not null;default:0"`
	FailedAttempts    int `gorm:"not null;default:0"`
	LastChargedAt     *time.Time
	LastFailureReason string `gorm:"size:500"`
	Gateway           string `gorm:"size:32;not null"`
	CardToken         string `gorm:"size:255"`
	CardExpiry        string `gorm:"size:10"`
	Status            string `gorm:"size:20;not null;index"`
	Version           int    `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (RecurringPaymentModel) TableName() string {
	return constants.TableRecurringPayments
}
