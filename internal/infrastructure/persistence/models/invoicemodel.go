package models

import (
	"time"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type InvoiceModel struct {
	ID          uint   `gorm:"primaryKey"`
	Number      string `gorm:"uniqueIndex;size:32;not null"`
	Year        int    `gorm:"not null;index"`
	Sequence    int    `gorm:"not null"`
	PaymentID   uint   `gorm:"uniqueIndex;not null"`
	ContactID   uint   `gorm:"not null;index"`
	Description string `gorm:"size:500"`
	Subtotal    int64  `gorm:"not null"`
	VATAmount   int64  `gorm:"column:vat_amount;not null"`
	Total       int64  `gorm:"not null"`
	VATPercent  string `gorm:"column:vat_percent;type:decimal(5,2);not null"`
	Currency    string `gorm:"size:3;not null;default:'ILS'"`
	Status      string `gorm:"size:20;not null;index"`
	IssuedAt    time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (InvoiceModel) TableName() string {
	return constants.TableInvoices
}
