package billing

import (
	"time"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/billing"
)

type InstallmentDTO struct {
	ID        uint            `json:"id"`
	Number    int             `json:"number"`
	DueDate   time.Time       `json:"due_date"`
	Amount    commondto.Money `json:"amount"`
	Status    string          `json:"status"`
	PaymentID *uint           `json:"payment_id,omitempty"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

type PaymentPlanDTO struct {
	ID               uint              `json:"id"`
	ContactID        uint              `json:"contact_id"`
	DealID           *uint             `json:"deal_id,omitempty"`
	Description      string            `json:"description"`
	Total            commondto.Money   `json:"total"`
	Paid             commondto.Money   `json:"paid"`
	InstallmentCount int               `json:"installment_count"`
	Frequency        string            `json:"frequency"`
	StartDate        time.Time         `json:"start_date"`
	Status           string            `json:"status"`
	Installments     []*InstallmentDTO `json:"installments"`
	CreatedAt        time.Time         `json:"created_at"`
}

func ToPaymentPlanDTO(p *billing.PaymentPlan) *PaymentPlanDTO {
	installments := make([]*InstallmentDTO, 0, len(p.Installments()))
	for _, inst := range p.Installments() {
		installments = append(installments, &InstallmentDTO{
			ID:        inst.ID,
			Number:    inst.Number,
			DueDate:   inst.DueDate,
			Amount:    commondto.FromMoney(inst.Amount),
			Status:    string(inst.Status),
			PaymentID: inst.PaymentID,
			PaidAt:    inst.PaidAt,
		})
	}
	return &PaymentPlanDTO{
		ID:               p.ID(),
		ContactID:        p.ContactID(),
		DealID:           p.DealID(),
		Description:      p.Description(),
		Total:            commondto.FromMoney(p.Total()),
		Paid:             commondto.FromMoney(p.PaidTotal()),
		InstallmentCount: p.InstallmentCount(),
		Frequency:        p.Frequency().String(),
		StartDate:        p.StartDate(),
		Status:           string(p.Status()),
		Installments:     installments,
		CreatedAt:        p.CreatedAt(),
	}
}

type RecurringPaymentDTO struct {
	ID                uint            `json:"id"`
	ContactID         uint            `json:"contact_id"`
	ProductID         *uint           `json:"product_id,omitempty"`
	Description       string          `json:"description"`
	Amount            commondto.Money `json:"amount"`
	Frequency         string          `json:"frequency"`
	StartDate         time.Time       `json:"start_date"`
	NextChargeDate    time.Time       `json:"next_charge_date"`
	RetryAt           *time.Time      `json:"retry_at,omitempty"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	MaxCharges        *int            `json:"max_charges,omitempty"`
	ChargeCount       int             `json:"charge_count"`
	FailedAttempts    int             `json:"failed_attempts"`
	LastChargedAt     *time.Time      `json:"last_charged_at,omitempty"`
	LastFailureReason string          `json:"last_failure_reason,omitempty"`
	Gateway           string          `json:"gateway"`
	CardLast4         string          `json:"card_last4,omitempty"`
	CardExpiry        string          `json:"card_expiry,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToRecurringPaymentDTO never exposes the card token, only its last four characters.
func ToRecurringPaymentDTO(r *billing.RecurringPayment) *RecurringPaymentDTO {
	return &RecurringPaymentDTO{
		ID:                r.ID(),
		ContactID:         r.ContactID(),
		ProductID:         r.ProductID(),
		Description:       r.Description(),
		Amount:            commondto.FromMoney(r.Amount()),
		Frequency:         r.Frequency().String(),
		StartDate:         r.StartDate(),
		NextChargeDate:    r.NextChargeDate(),
		RetryAt:           r.RetryAt(),
		EndDate:           r.EndDate(),
		MaxCharges:        r.MaxCharges(),
		ChargeCount:       r.ChargeCount(),
		FailedAttempts:    r.FailedAttempts(),
		LastChargedAt:     r.LastChargedAt(),
		LastFailureReason: r.LastFailureReason(),
		Gateway:           r.Gateway(),
		CardLast4:         last4(r.CardToken()),
		CardExpiry:        r.CardExpiry(),
		Status:            string(r.Status()),
		CreatedAt:         r.CreatedAt(),
	}
}

func last4(token string) string {
	if len(token) <= 4 {
		return token
	}
	return token[len(token)-4:]
}

type ReminderDTO struct {
	ID                 uint            `json:"id"`
	ContactID          uint            `json:"contact_id"`
	Kind               string          `json:"kind"`
	PlanID             *uint           `json:"plan_id,omitempty"`
	InstallmentID      *uint           `json:"installment_id,omitempty"`
	RecurringPaymentID *uint           `json:"recurring_payment_id,omitempty"`
	PaymentID          *uint           `json:"payment_id,omitempty"`
	Amount             commondto.Money `json:"amount"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	RemindAt           time.Time       `json:"remind_at"`
	Channel            string          `json:"channel"`
	Status             string          `json:"status"`
	Attempts           int             `json:"attempts"`
	LastError          string          `json:"last_error,omitempty"`
	SentAt             *time.Time      `json:"sent_at,omitempty"`
}

func ToReminderDTO(r *billing.Reminder) *ReminderDTO {
	return &ReminderDTO{
		ID:                 r.ID(),
		ContactID:          r.ContactID(),
		Kind:               string(r.Kind()),
		PlanID:             r.PlanID(),
		InstallmentID:      r.InstallmentID(),
		RecurringPaymentID: r.RecurringPaymentID(),
		PaymentID:          r.PaymentID(),
		Amount:             commondto.FromMoney(r.Amount()),
		DueDate:            r.DueDate(),
		RemindAt:           r.RemindAt(),
		Channel:            r.Channel(),
		Status:             string(r.Status()),
		Attempts:           r.Attempts(),
		LastError:          r.LastError(),
		SentAt:             r.SentAt(),
	}
}
