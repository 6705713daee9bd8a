package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
)

type Status string

const (
	StatusIssued    Status = "issued"
	StatusCancelled Status = "cancelled"
	StatusCredited  Status = "credited"
)

func (s Status) IsValid() bool {
	return s == StatusIssued || s == StatusCancelled || s == StatusCredited
}

func (s Status) String() string { return string(s) }

type Invoice struct {
	id          uint
	number      string
	paymentID   uint
	contactID   uint
	description string
	subtotal    money.Money
	vat         money.Money
	total       money.Money
	vatPercent  decimal.Decimal
	status      Status
	issuedAt    time.Time
	cancelledAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// FormatNumber renders INV-<year>-<5 digit sequence>.
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("INV-%d-%05d", year, seq)
}

// ParseNumber is the inverse of FormatNumber.
func ParseNumber(number string) (year, seq int, err error) {
	if _, err := fmt.Sscanf(number, "INV-%d-%d", &year, &seq); err != nil {
		return 0, 0, fmt.Errorf("malformed invoice number %q", number)
	}
	return year, seq, nil
}

// SplitVAT extracts VAT from a VAT-inclusive total:
// subtotal = round(total / (1 + percent/100)), vat = total - subtotal.
func SplitVAT(total money.Money, percent decimal.Decimal) (subtotal, vat money.Money) {
	rate := decimal.NewFromInt(1).Add(percent.Div(decimal.NewFromInt(100)))
	net := decimal.NewFromInt(total.Amount()).DivRound(rate, 4).Round(0)
	subtotal = money.New(net.IntPart(), total.Currency())
	vat = money.New(total.Amount()-subtotal.Amount(), total.Currency())
	return subtotal, vat
}

type NewInvoiceParams struct {
	Number      string
	PaymentID   uint
	ContactID   uint
	Description string
	Total       money.Money
	VATPercent  decimal.Decimal
	IssuedAt    time.Time
}

func NewInvoice(p NewInvoiceParams) (*Invoice, error) {
	if strings.TrimSpace(p.Number) == "" {
		return nil, fmt.Errorf("invoice number is required")
	}
	if p.PaymentID == 0 || p.ContactID == 0 {
		return nil, fmt.Errorf("payment and contact are required")
	}
	if !p.Total.IsPositive() {
		return nil, fmt.Errorf("invoice total must be positive")
	}
	if p.VATPercent.IsNegative() || p.VATPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("vat percent must be between 0 and 100")
	}

	subtotal, vat := SplitVAT(p.Total, p.VATPercent)
	issuedAt := p.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = biztime.NowUTC()
	}
	now := biztime.NowUTC()
	return &Invoice{
		number:      p.Number,
		paymentID:   p.PaymentID,
		contactID:   p.ContactID,
		description: strings.TrimSpace(p.Description),
		subtotal:    subtotal,
		vat:         vat,
		total:       p.Total,
		vatPercent:  p.VATPercent,
		status:      StatusIssued,
		issuedAt:    issuedAt.UTC(),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func (i *Invoice) Cancel() error {
	if i.status == StatusCancelled {
		return nil
	}
	if i.status != StatusIssued {
		return fmt.Errorf("cannot cancel a %s invoice", i.status)
	}
	now := biztime.NowUTC()
	i.status = StatusCancelled
	i.cancelledAt = &now
	i.updatedAt = now
	return nil
}

// MarkCredited records that the underlying payment was fully refunded.
func (i *Invoice) MarkCredited() error {
	if i.status == StatusCredited {
		return nil
	}
	if i.status != StatusIssued {
		return fmt.Errorf("cannot credit a %s invoice", i.status)
	}
	i.status = StatusCredited
	i.updatedAt = biztime.NowUTC()
	return nil
}

func (i *Invoice) ID() uint                    { return i.id }
func (i *Invoice) Number() string              { return i.number }
func (i *Invoice) PaymentID() uint             { return i.paymentID }
func (i *Invoice) ContactID() uint             { return i.contactID }
func (i *Invoice) Description() string         { return i.description }
func (i *Invoice) Subtotal() money.Money       { return i.subtotal }
func (i *Invoice) VAT() money.Money            { return i.vat }
func (i *Invoice) Total() money.Money          { return i.total }
func (i *Invoice) VATPercent() decimal.Decimal { return i.vatPercent }
func (i *Invoice) Status() Status              { return i.status }
func (i *Invoice) IssuedAt() time.Time         { return i.issuedAt }
func (i *Invoice) CancelledAt() *time.Time     { return i.cancelledAt }
func (i *Invoice) CreatedAt() time.Time        { return i.createdAt }
func (i *Invoice) UpdatedAt() time.Time        { return i.updatedAt }

func (i *Invoice) SetID(id uint) { i.id = id }

type InvoiceParams struct {
	ID          uint
	Number      string
	PaymentID   uint
	ContactID   uint
	Description string
	Subtotal    money.Money
	VAT         money.Money
	Total       money.Money
	VATPercent  decimal.Decimal
	Status      Status
	IssuedAt    time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func ReconstructInvoice(p InvoiceParams) *Invoice {
	return &Invoice{
		id:          p.ID,
		number:      p.Number,
		paymentID:   p.PaymentID,
		contactID:   p.ContactID,
		description: p.Description,
		subtotal:    p.Subtotal,
		vat:         p.VAT,
		total:       p.Total,
		vatPercent:  p.VATPercent,
		status:      p.Status,
		issuedAt:    p.IssuedAt,
		cancelledAt: p.CancelledAt,
		createdAt:   p.CreatedAt,
		updatedAt:   p.UpdatedAt,
	}
}
