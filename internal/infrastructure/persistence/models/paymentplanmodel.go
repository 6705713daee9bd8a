package models

import (
	"time"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type PaymentPlanModel struct {
	ID               uint   `gorm:"primaryKey"`
	ContactID        uint   `gorm:"not null;index"`
	DealID           *uint  `gorm:"index"`
	Description      string `gorm:"size:500"`
	Total            int64  `gorm:"not null"`
	Currency         string `gorm:"size:3;not null;default:'ILS'"`
	InstallmentCount int    `gorm:"not null"`
	Frequency        string `gorm:"size:20;not null"`
	StartDate        time.Time
	Status           string `gorm:"size:20;not null;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (PaymentPlanModel) TableName() string {
	return constants.TablePaymentPlans
}

type PlanInstallmentModel struct {
	ID        uint      `gorm:"primaryKey"`
	PlanID    uint      `gorm:"not null;index"`
	Number    int       `gorm:"not null"`
	DueDate   time.Time `gorm:"index"`
	Amount    int64     `gorm:"not null"`
	Currency  string    `gorm:"size:3;not null;default:'ILS'"`
	Status    string    `gorm:"size:20;not null;index"`
	PaymentID *uint     `gorm:"index"`
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PlanInstallmentModel) TableName() string {
	return constants.TablePlanInstallments
}
