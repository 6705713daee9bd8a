package deal

import (
	"fmt"
	"strings"
	"time"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
)

type Deal struct {
	id                uint
	contactID         uint
	leadID            *uint
	productID         *uint
	title             string
	amount            money.Money
	discount          money.Money
	status            Status
	expectedCloseDate *time.Time
	closedAt          *time.Time
	notes             string
	createdAt         time.Time
	updatedAt         time.Time
}

type NewDealParams struct {
	ContactID         uint
	LeadID            *uint
	ProductID         *uint
	Title             string
	Amount            money.Money
	Discount          money.Money
	ExpectedCloseDate *time.Time
	Notes             string
}

func NewDeal(p NewDealParams) (*Deal, error) {
	if p.ContactID == 0 {
		return nil, fmt.Errorf("contact ID is required")
	}
	d := &Deal{
		contactID: p.ContactID,
		leadID:    p.LeadID,
		productID: p.ProductID,
		status:    StatusOpen,
		notes:     strings.TrimSpace(p.Notes),
	}
	if err := d.setTerms(p.Title, p.Amount, p.Discount, p.ExpectedCloseDate); err != nil {
		return nil, err
	}
	now := biztime.NowUTC()
	d.createdAt = now
	d.updatedAt = now
	return d, nil
}

func (d *Deal) setTerms(title string, amount, discount money.Money, expectedClose *time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("deal title is required")
	}
	if !amount.IsPositive() {
		return fmt.Errorf("deal amount must be positive")
	}
	if discount.IsZero() {
		discount = money.Zero(amount.Currency())
	}
	if discount.IsNegative() {
		return fmt.Errorf("discount cannot be negative")
	}
	if !discount.SameCurrency(amount) {
		return fmt.Errorf("discount currency %s does not match amount currency %s", discount.Currency(), amount.Currency())
	}
	if discount.GreaterThan(amount) {
		return fmt.Errorf("discount cannot exceed the deal amount")
	}
	d.title = title
	d.amount = amount
	d.discount = discount
	d.expectedCloseDate = expectedClose
	return nil
}

// UpdateTerms is only allowed while the deal is open.
func (d *Deal) UpdateTerms(title string, amount, discount money.Money, expectedClose *time.Time, notes string) error {
	if d.status != StatusOpen {
		return fmt.Errorf("cannot edit a %s deal", d.status)
	}
	if err := d.setTerms(title, amount, discount, expectedClose); err != nil {
		return err
	}
	d.notes = strings.TrimSpace(notes)
	d.updatedAt = biztime.NowUTC()
	return nil
}

// ChangeStatus closes an open deal. Closed deals cannot change status.
func (d *Deal) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid deal status: %s", status)
	}
	if d.status == status {
		return nil
	}
	if d.status.IsFinal() {
		return fmt.Errorf("deal is already %s", d.status)
	}
	now := biztime.NowUTC()
	d.status = status
	if status.IsFinal() {
		d.closedAt = &now
	}
	d.updatedAt = now
	return nil
}

// FinalAmount is the amount after discount.
func (d *Deal) FinalAmount() money.Money {
	final, _ := d.amount.Sub(d.discount)
	return final
}

// IsCoveredBy reports whether paid covers the final amount.
func (d *Deal) IsCoveredBy(paid money.Money) bool {
	return paid.SameCurrency(d.amount) && paid.Amount() >= d.FinalAmount().Amount()
}

func (d *Deal) ID() uint                      { return d.id }
func (d *Deal) ContactID() uint               { return d.contactID }
func (d *Deal) LeadID() *uint                 { return d.leadID }
func (d *Deal) ProductID() *uint              { return d.productID }
func (d *Deal) Title() string                 { return d.title }
func (d *Deal) Amount() money.Money           { return d.amount }
func (d *Deal) Discount() money.Money         { return d.discount }
func (d *Deal) Status() Status                { return d.status }
func (d *Deal) ExpectedCloseDate() *time.Time { return d.expectedCloseDate }
func (d *Deal) ClosedAt() *time.Time          { return d.closedAt }
func (d *Deal) Notes() string                 { return d.notes }
func (d *Deal) CreatedAt() time.Time          { return d.createdAt }
func (d *Deal) UpdatedAt() time.Time          { return d.updatedAt }

func (d *Deal) SetID(id uint) { d.id = id }

type DealParams struct {
	ID                uint
	ContactID         uint
	LeadID            *uint
	ProductID         *uint
	Title             string
	Amount            money.Money
	Discount          money.Money
	Status            Status
	ExpectedCloseDate *time.Time
	ClosedAt          *time.Time
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstructDeal(p DealParams) *Deal {
	return &Deal{
		id:                p.ID,
		contactID:         p.ContactID,
		leadID:            p.LeadID,
		productID:         p.ProductID,
		title:             p.Title,
		amount:            p.Amount,
		discount:          p.Discount,
		status:            p.Status,
		expectedCloseDate: p.ExpectedCloseDate,
		closedAt:          p.ClosedAt,
		notes:             p.Notes,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}
}
