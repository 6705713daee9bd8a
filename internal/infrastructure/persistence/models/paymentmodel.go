package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type PaymentModel struct {
	ID                 uint    `gorm:"primaryKey"`
	Reference          string  `gorm:"uniqueIndex;size:32;not null"`
	ContactID          uint    `gorm:"not null;index"`
	DealID             *uint   `gorm:"index"`
	RecurringPaymentID *uint   `gorm:"index"`
	InstallmentID      *uint   `gorm:"index"`
	Description        string  `gorm:"size:500"`
	Amount             int64   `gorm:"not null"`
	Currency           string  `gorm:"size:3;not null;default:'ILS'"`
	Method             string  `gorm:"size:20;not null"`
	Gateway            string  `gorm:"size:32;not null;index:idx_payments_gateway_tx"`
	Status             string  `gorm:"size:20;not null;index"`
	TransactionID      *string `gorm:"size:128;index:idx_payments_gateway_tx"`
	RedirectURL        string  `gorm:"type:text"`
	Installments       int     `gorm:"not null;default:1"`
	RefundedAmount     int64   `gorm:"not null;default:0"`
	FailureReason      string  `gorm:"size:500"`
	Metadata           datatypes.JSON
	PaidAt             *time.Time `gorm:"index"`
	RefundedAt         *time.Time
	Version            int       `gorm:"not null;default:0"`
	CreatedAt          time.Time `gorm:"index"`
	UpdatedAt          time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}

type WebhookEventModel struct {
	ID         uint   `gorm:"primaryKey"`
	Gateway    string `gorm:"size:32;not null;uniqueIndex:uk_webhook_gateway_event"`
	EventID    string `gorm:"size:191;not null;uniqueIndex:uk_webhook_gateway_event"`
	EventType  string `gorm:"size:64"`
	Reference  string `gorm:"size:128;index"`
	Payload    string `gorm:"type:text"`
	ReceivedAt time.Time
}

func (WebhookEventModel) TableName() string {
	return constants.TableWebhookEvents
}
