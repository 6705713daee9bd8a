// Package invoice issues tax invoices for completed payments.
package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/invoice"
	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

const (
	InvoiceTemplateName = "invoice_issued"
	numberAttempts      = 3
)

// TemplateSender renders a stored message template and emails it to a contact.
type TemplateSender interface {
	SendTemplate(ctx context.Context, templateName string, contactID uint, vars map[string]string) error
}

type InvoiceDTO struct {
	ID          uint            `json:"id"`
	Number      string          `json:"number"`
	PaymentID   uint            `json:"payment_id"`
	ContactID   uint            `json:"contact_id"`
	Description string          `json:"description"`
	Subtotal    commondto.Money `json:"subtotal"`
	VAT         commondto.Money `json:"vat"`
	Total       commondto.Money `json:"total"`
	VATPercent  string          `json:"vat_percent"`
	Status      string          `json:"status"`
	IssuedAt    time.Time       `json:"issued_at"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
}

func ToInvoiceDTO(inv *invoice.Invoice) *InvoiceDTO {
	return &InvoiceDTO{
		ID:          inv.ID(),
		Number:      inv.Number(),
		PaymentID:   inv.PaymentID(),
		ContactID:   inv.ContactID(),
		Description: inv.Description(),
		Subtotal:    commondto.FromMoney(inv.Subtotal()),
		VAT:         commondto.FromMoney(inv.VAT()),
		Total:       commondto.FromMoney(inv.Total()),
		VATPercent:  inv.VATPercent().String(),
		Status:      inv.Status().String(),
		IssuedAt:    inv.IssuedAt(),
		CancelledAt: inv.CancelledAt(),
	}
}

type Service struct {
	repo        invoice.Repository
	paymentRepo payment.PaymentRepository
	sender      TemplateSender
	vatPercent  decimal.Decimal
	logger      logger.Interface
}

func NewService(
	repo invoice.Repository,
	paymentRepo payment.PaymentRepository,
	sender TemplateSender,
	vatPercent decimal.Decimal,
	logger logger.Interface,
) *Service {
	return &Service{
		repo:        repo,
		paymentRepo: paymentRepo,
		sender:      sender,
		vatPercent:  vatPercent,
		logger:      logger,
	}
}

// GenerateForPayment issues the invoice of a completed payment. A payment that
// already has one gets it back unchanged.
func (s *Service) GenerateForPayment(ctx context.Context, paymentID uint) (*InvoiceDTO, error) {
	existing, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return ToInvoiceDTO(existing), nil
	}

	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status() != vo.PaymentStatusCompleted {
		return nil, apperrors.NewConflictError("only completed payments can be invoiced", p.Status().String())
	}

	issuedAt := biztime.NowUTC()
	if p.PaidAt() != nil {
		issuedAt = *p.PaidAt()
	}
	year := issuedAt.In(biztime.Location()).Year()
	description := p.Description()
	if description == "" {
		description = "Payment " + p.Reference()
	}

	for attempt := 1; ; attempt++ {
		seq, err := s.repo.NextSequence(ctx, year)
		if err != nil {
			return nil, err
		}
		inv, err := invoice.NewInvoice(invoice.NewInvoiceParams{
			Number:      invoice.FormatNumber(year, seq),
			PaymentID:   p.ID(),
			ContactID:   p.ContactID(),
			Description: description,
			Total:       p.Amount(),
			VATPercent:  s.vatPercent,
			IssuedAt:    issuedAt,
		})
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}

		err = s.repo.Create(ctx, inv)
		if err == nil {
			s.logger.Infow("invoice issued",
				"invoice_id", inv.ID(),
				"number", inv.Number(),
				"payment_id", p.ID(),
				"total", inv.Total().String(),
			)
			return ToInvoiceDTO(inv), nil
		}
		if !apperrors.IsConflictError(err) || attempt == numberAttempts {
			s.logger.Errorw("failed to create invoice", "error", err, "payment_id", p.ID())
			return nil, err
		}

		// Either another worker took the number or it invoiced the same payment.
		if again, lookupErr := s.repo.GetByPaymentID(ctx, paymentID); lookupErr == nil && again != nil {
			return ToInvoiceDTO(again), nil
		}
		s.logger.Warnw("invoice number taken, retrying", "number", inv.Number(), "attempt", attempt)
	}
}

// IssueForPayment lets payment settlement issue invoices.
func (s *Service) IssueForPayment(ctx context.Context, paymentID uint) error {
	_, err := s.GenerateForPayment(ctx, paymentID)
	return err
}

// CreditForPayment marks the payment's invoice credited. Payments without an invoice are skipped.
func (s *Service) CreditForPayment(ctx context.Context, paymentID uint) error {
	inv, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return err
	}
	if inv == nil {
		return nil
	}
	if err := inv.MarkCredited(); err != nil {
		return apperrors.NewConflictError(err.Error())
	}
	if err := s.repo.Update(ctx, inv); err != nil {
		return err
	}
	s.logger.Infow("invoice credited", "invoice_id", inv.ID(), "number", inv.Number())
	return nil
}

func (s *Service) Get(ctx context.Context, id uint) (*InvoiceDTO, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToInvoiceDTO(inv), nil
}

type ListQuery struct {
	Status    string
	ContactID uint
	Year      int
	Page      int
	PageSize  int
}

func (s *Service) List(ctx context.Context, q ListQuery) (*commondto.ListResult[*InvoiceDTO], error) {
	filter := invoice.Filter{ContactID: q.ContactID, Year: q.Year}
	if q.Status != "" {
		status := invoice.Status(q.Status)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("invalid invoice status", q.Status)
		}
		filter.Status = status
	}
	pg := utils.NormalizePagination(q.Page, q.PageSize)
	filter.Page, filter.PageSize = pg.Page, pg.PageSize

	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Errorw("failed to list invoices", "error", err)
		return nil, err
	}
	items := make([]*InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, ToInvoiceDTO(inv))
	}
	return &commondto.ListResult[*InvoiceDTO]{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *Service) Cancel(ctx context.Context, id uint) (*InvoiceDTO, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancel(); err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Infow("invoice cancelled", "invoice_id", inv.ID(), "number", inv.Number())
	return ToInvoiceDTO(inv), nil
}

// Send emails the invoice to its contact using the invoice_issued template.
func (s *Service) Send(ctx context.Context, id uint) error {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status() == invoice.StatusCancelled {
		return apperrors.NewConflictError("cancelled invoices cannot be sent")
	}
	vars := map[string]string{
		"InvoiceNumber": inv.Number(),
		"Description":   inv.Description(),
		"Subtotal":      inv.Subtotal().String(),
		"VAT":           inv.VAT().String(),
		"Total":         inv.Total().String(),
		"IssuedAt":      biztime.Format(inv.IssuedAt(), "02/01/2006"),
	}
	if err := s.sender.SendTemplate(ctx, InvoiceTemplateName, inv.ContactID(), vars); err != nil {
		s.logger.Errorw("failed to send invoice", "error", err, "invoice_id", inv.ID())
		return err
	}
	s.logger.Infow("invoice sent", "invoice_id", inv.ID(), "contact_id", inv.ContactID())
	return nil
}
