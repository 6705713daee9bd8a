package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) *models.PaymentModel {
	model := &models.PaymentModel{
		ID:                 p.ID(),
		Reference:          p.Reference(),
		ContactID:          p.ContactID(),
		DealID:             p.DealID(),
		RecurringPaymentID: p.RecurringPaymentID(),
		InstallmentID:      p.InstallmentID(),
		Description:        p.Description(),
		Amount:             p.Amount().Amount(),
		Currency:           p.Amount().Currency(),
		Method:             p.Method().String(),
		Gateway:            p.Gateway(),
		Status:             p.Status().String(),
		TransactionID:      stringPtr(p.TransactionID()),
		RedirectURL:        p.RedirectURL(),
		Installments:       p.Installments(),
		RefundedAmount:     p.RefundedAmount().Amount(),
		FailureReason:      p.FailureReason(),
		PaidAt:             p.PaidAt(),
		RefundedAt:         p.RefundedAt(),
		Version:            p.Version(),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}

	if len(p.Metadata()) > 0 {
		model.Metadata = toJSON(p.Metadata())
	}

	return model
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	method, err := vo.NewPaymentMethod(model.Method)
	if err != nil {
		return nil, fmt.Errorf("invalid payment method: %w", err)
	}

	status := vo.PaymentStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", model.Status)
	}

	metadata := make(map[string]any)
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to decode payment metadata: %w", err)
		}
	}

	return payment.ReconstructPaymentWithParams(payment.PaymentReconstructParams{
		ID:                 model.ID,
		Reference:          model.Reference,
		ContactID:          model.ContactID,
		DealID:             model.DealID,
		RecurringPaymentID: model.RecurringPaymentID,
		InstallmentID:      model.InstallmentID,
		Description:        model.Description,
		Amount:             money.New(model.Amount, model.Currency),
		Method:             method,
		Gateway:            model.Gateway,
		Status:             status,
		TransactionID:      derefString(model.TransactionID),
		RedirectURL:        model.RedirectURL,
		Installments:       model.Installments,
		RefundedAmount:     money.New(model.RefundedAmount, model.Currency),
		FailureReason:      model.FailureReason,
		Metadata:           metadata,
		PaidAt:             model.PaidAt,
		RefundedAt:         model.RefundedAt,
		Version:            model.Version,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}), nil
}

func WebhookEventToModel(e *payment.WebhookEvent) *models.WebhookEventModel {
	return &models.WebhookEventModel{
		Gateway:    e.Gateway,
		EventID:    e.EventID,
		EventType:  e.EventType,
		Reference:  e.Reference,
		Payload:    string(e.Payload),
		ReceivedAt: e.ReceivedAt,
	}
}
