package mappers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kesher-io/kesher/internal/domain/invoice"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
)

func InvoiceToModel(inv *invoice.Invoice) *models.InvoiceModel {
	year, seq, _ := invoice.ParseNumber(inv.Number())
	return &models.InvoiceModel{
		ID:          inv.ID(),
		Number:      inv.Number(),
		Year:        year,
		Sequence:    seq,
		PaymentID:   inv.PaymentID(),
		ContactID:   inv.ContactID(),
		Description: inv.Description(),
		Subtotal:    inv.Subtotal().Amount(),
		VATAmount:   inv.VAT().Amount(),
		Total:       inv.Total().Amount(),
		VATPercent:  inv.VATPercent().StringFixed(2),
		Currency:    inv.Total().Currency(),
		Status:      inv.Status().String(),
		IssuedAt:    inv.IssuedAt(),
		CancelledAt: inv.CancelledAt(),
		CreatedAt:   inv.CreatedAt(),
		UpdatedAt:   inv.UpdatedAt(),
	}
}

func InvoiceToDomain(model *models.InvoiceModel) (*invoice.Invoice, error) {
	status := invoice.Status(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid invoice status: %s", model.Status)
	}
	percent, err := decimal.NewFromString(model.VATPercent)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice vat percent %q: %w", model.VATPercent, err)
	}
	return invoice.ReconstructInvoice(invoice.InvoiceParams{
		ID:          model.ID,
		Number:      model.Number,
		PaymentID:   model.PaymentID,
		ContactID:   model.ContactID,
		Description: model.Description,
		Subtotal:    money.New(model.Subtotal, model.Currency),
		VAT:         money.New(model.VATAmount, model.Currency),
		Total:       money.New(model.Total, model.Currency),
		VATPercent:  percent,
		Status:      status,
		IssuedAt:    model.IssuedAt,
		CancelledAt: model.CancelledAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}), nil
}
