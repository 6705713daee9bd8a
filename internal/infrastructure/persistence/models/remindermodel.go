package models

import (
	"time"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type ReminderModel struct {
	ID                 uint   `gorm:"primaryKey"`
	ContactID          uint   `gorm:"not null;index"`
	Kind               string `gorm:"size:32;not null;index"`
	PlanID             *uint  `gorm:"index"`
	InstallmentID      *uint  `gorm:"index"`
	RecurringPaymentID *uint  `gorm:"index"`
	PaymentID          *uint  `gorm:"index"`
	Amount             int64  `gorm:"not null;default:0"`
	Currency           string `gorm:"size:3;not null;default:'ILS'"`
	DueDate            *time.Time
	RemindAt           time.Time `gorm:"index"`
	Channel            string    `gorm:"size:20;not null"`
	Status             string    `gorm:"size:20;not null;index"`
	Attempts           int       `gorm:"not null;default:0"`
	LastError          string    `gorm:"size:500"`
	SentAt             *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (ReminderModel) TableName() string {
	return constants.TableReminders
}
