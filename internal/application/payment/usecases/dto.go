package usecases

import (
	"time"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/payment"
)

type PaymentDTO struct {
	ID                 uint            `json:"id"`
	Reference          string          `json:"reference"`
	ContactID          uint            `json:"contact_id"`
	DealID             *uint           `json:"deal_id,omitempty"`
	RecurringPaymentID *uint           `json:"recurring_payment_id,omitempty"`
	InstallmentID      *uint           `json:"installment_id,omitempty"`
	Description        string          `json:"description,omitempty"`
	Amount             commondto.Money `json:"amount"`
	RefundedAmount     commondto.Money `json:"refunded_amount"`
	Method             string          `json:"method"`
	Gateway            string          `json:"gateway"`
	Status             string          `json:"status"`
	TransactionID      string          `json:"transaction_id,omitempty"`
	RedirectURL        string          `json:"redirect_url,omitempty"`
	Installments       int             `json:"installments"`
	FailureReason      string          `json:"failure_reason,omitempty"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	RefundedAt         *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func ToPaymentDTO(p *payment.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:                 p.ID(),
		Reference:          p.Reference(),
		ContactID:          p.ContactID(),
		DealID:             p.DealID(),
		RecurringPaymentID: p.RecurringPaymentID(),
		InstallmentID:      p.InstallmentID(),
		Description:        p.Description(),
		Amount:             commondto.FromMoney(p.Amount()),
		RefundedAmount:     commondto.FromMoney(p.RefundedAmount()),
		Method:             p.Method().String(),
		Gateway:            p.Gateway(),
		Status:             p.Status().String(),
		TransactionID:      p.TransactionID(),
		RedirectURL:        p.RedirectURL(),
		Installments:       p.Installments(),
		FailureReason:      p.FailureReason(),
		PaidAt:             p.PaidAt(),
		RefundedAt:         p.RefundedAt(),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}
}
