package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
)

const (
	MinPlanInstallments = 2
	MaxPlanInstallments = 36
)

type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
)

type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "pending"
	InstallmentStatusPaid      InstallmentStatus = "paid"
	InstallmentStatusCancelled InstallmentStatus = "cancelled"
)

// Installment is one scheduled part of a payment plan.
type Installment struct {
	ID        uint
	PlanID    uint
	Number    int
	DueDate   time.Time
	Amount    money.Money
	Status    InstallmentStatus
	PaymentID *uint
	PaidAt    *time.Time
}

// PaymentPlan spreads a total over weekly or monthly installments.
type PaymentPlan struct {
	id               uint
	contactID        uint
	dealID           *uint
	description      string
	total            money.Money
	installmentCount int
	frequency        Frequency
	startDate        time.Time
	status           PlanStatus
	installments     []*Installment
	createdAt        time.Time
	updatedAt        time.Time
}

type NewPaymentPlanParams struct {
	ContactID        uint
	DealID           *uint
	Description      string
	Total            money.Money
	InstallmentCount int
	Frequency        Frequency
	StartDate        time.Time
}

func NewPaymentPlan(p NewPaymentPlanParams) (*PaymentPlan, error) {
	if p.ContactID == 0 {
		return nil, fmt.Errorf("contact ID is required")
	}
	if !p.Total.IsPositive() {
		return nil, fmt.Errorf("plan total must be positive")
	}
	if p.InstallmentCount < MinPlanInstallments || p.InstallmentCount > MaxPlanInstallments {
		return nil, fmt.Errorf("installment count must be between %d and %d", MinPlanInstallments, MaxPlanInstallments)
	}
	if p.Frequency != FrequencyWeekly && p.Frequency != FrequencyMonthly {
		return nil, fmt.Errorf("payment plans are weekly or monthly, got %q", p.Frequency)
	}
	if p.StartDate.IsZero() {
		return nil, fmt.Errorf("start date is required")
	}
	if p.Total.Amount() < int64(p.InstallmentCount) {
		return nil, fmt.Errorf("plan total is too small for %d installments", p.InstallmentCount)
	}

	amounts, err := p.Total.Split(p.InstallmentCount)
	if err != nil {
		return nil, err
	}
	dates := ScheduleDates(p.StartDate, p.Frequency, p.InstallmentCount)

	installments := make([]*Installment, p.InstallmentCount)
	for i := range installments {
		installments[i] = &Installment{
			Number:  i + 1,
			DueDate: dates[i],
			Amount:  amounts[i],
			Status:  InstallmentStatusPending,
		}
	}

	now := biztime.NowUTC()
	return &PaymentPlan{
		contactID:        p.ContactID,
		dealID:           p.DealID,
		description:      strings.TrimSpace(p.Description),
		total:            p.Total,
		installmentCount: p.InstallmentCount,
		frequency:        p.Frequency,
		startDate:        p.StartDate.UTC(),
		status:           PlanStatusActive,
		installments:     installments,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

func (pp *PaymentPlan) Installment(id uint) (*Installment, bool) {
	for _, inst := range pp.installments {
		if inst.ID == id {
			return inst, true
		}
	}
	return nil, false
}

// MarkInstallmentPaid settles one installment; the plan completes when none are left pending.
// Paying an already paid installment is a no-op.
func (pp *PaymentPlan) MarkInstallmentPaid(installmentID, paymentID uint, paidAt time.Time) error {
	inst, ok := pp.Installment(installmentID)
	if !ok {
		return fmt.Errorf("installment %d does not belong to plan %d", installmentID, pp.id)
	}
	if inst.Status == InstallmentStatusPaid {
		return nil
	}
	if inst.Status != InstallmentStatusPending {
		return fmt.Errorf("installment %d is %s", inst.Number, inst.Status)
	}

	paidAt = paidAt.UTC()
	inst.Status = InstallmentStatusPaid
	inst.PaymentID = &paymentID
	inst.PaidAt = &paidAt

	if _, pending := pp.NextPendingInstallment(); !pending {
		pp.status = PlanStatusCompleted
	}
	pp.updatedAt = biztime.NowUTC()
	return nil
}

func (pp *PaymentPlan) Cancel() error {
	if pp.status == PlanStatusCancelled {
		return nil
	}
	if pp.status != PlanStatusActive {
		return fmt.Errorf("cannot cancel a %s plan", pp.status)
	}
	for _, inst := range pp.installments {
		if inst.Status == InstallmentStatusPending {
			inst.Status = InstallmentStatusCancelled
		}
	}
	pp.status = PlanStatusCancelled
	pp.updatedAt = biztime.NowUTC()
	return nil
}

func (pp *PaymentPlan) NextPendingInstallment() (*Installment, bool) {
	for _, inst := range pp.installments {
		if inst.Status == InstallmentStatusPending {
			return inst, true
		}
	}
	return nil, false
}

// PaidTotal sums the paid installments.
func (pp *PaymentPlan) PaidTotal() money.Money {
	var sum int64
	for _, inst := range pp.installments {
		if inst.Status == InstallmentStatusPaid {
			sum += inst.Amount.Amount()
		}
	}
	return money.New(sum, pp.total.Currency())
}

func (pp *PaymentPlan) ID() uint                     { return pp.id }
func (pp *PaymentPlan) ContactID() uint              { return pp.contactID }
func (pp *PaymentPlan) DealID() *uint                { return pp.dealID }
func (pp *PaymentPlan) Description() string          { return pp.description }
func (pp *PaymentPlan) Total() money.Money           { return pp.total }
func (pp *PaymentPlan) InstallmentCount() int        { return pp.installmentCount }
func (pp *PaymentPlan) Frequency() Frequency         { return pp.frequency }
func (pp *PaymentPlan) StartDate() time.Time         { return pp.startDate }
func (pp *PaymentPlan) Status() PlanStatus           { return pp.status }
func (pp *PaymentPlan) Installments() []*Installment { return pp.installments }
func (pp *PaymentPlan) CreatedAt() time.Time         { return pp.createdAt }
func (pp *PaymentPlan) UpdatedAt() time.Time         { return pp.updatedAt }

// SetID also stamps the plan ID on its installments.
func (pp *PaymentPlan) SetID(id uint) {
	pp.id = id
	for _, inst := range pp.installments {
		inst.PlanID = id
	}
}

type PaymentPlanParams struct {
	ID               uint
	ContactID        uint
	DealID           *uint
	Description      string
	Total            money.Money
	InstallmentCount int
	Frequency        Frequency
	StartDate        time.Time
	Status           PlanStatus
	Installments     []*Installment
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func ReconstructPaymentPlan(p PaymentPlanParams) *PaymentPlan {
	return &PaymentPlan{
		id:               p.ID,
		contactID:        p.ContactID,
		dealID:           p.DealID,
		description:      p.Description,
		total:            p.Total,
		installmentCount: p.InstallmentCount,
		frequency:        p.Frequency,
		startDate:        p.StartDate,
		status:           p.Status,
		installments:     p.Installments,
		createdAt:        p.CreatedAt,
		updatedAt:        p.UpdatedAt,
	}
}
