package lead

import (
	"fmt"
	"strings"
	"time"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
)

type Lead struct {
	id             uint
	contactID      uint
	stage          Stage
	source         string
	productID      *uint
	estimatedValue money.Money
	notes          string
	lostReason     string
	closedAt       *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func NewLead(contactID uint, source string, productID *uint, estimatedValue money.Money, notes string) (*Lead, error) {
	if contactID == 0 {
		return nil, fmt.Errorf("contact ID is required")
	}
	if estimatedValue.IsNegative() {
		return nil, fmt.Errorf("estimated value cannot be negative")
	}
	now := biztime.NowUTC()
	return &Lead{
		contactID:      contactID,
		stage:          StageNew,
		source:         strings.TrimSpace(source),
		productID:      productID,
		estimatedValue: estimatedValue,
		notes:          strings.TrimSpace(notes),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// MoveTo changes the stage. Open stages move freely among themselves;
// won and lost are terminal and lost needs a reason.
func (l *Lead) MoveTo(stage Stage, reason string) error {
	if !stage.IsValid() {
		return fmt.Errorf("invalid lead stage: %s", stage)
	}
	if l.stage == stage {
		return nil
	}
	if l.stage.IsFinal() {
		return fmt.Errorf("lead is already %s", l.stage)
	}
	reason = strings.TrimSpace(reason)
	if stage == StageLost && reason == "" {
		return fmt.Errorf("a reason is required to mark a lead as lost")
	}

	now := biztime.NowUTC()
	l.stage = stage
	if stage.IsFinal() {
		l.closedAt = &now
	}
	if stage == StageLost {
		l.lostReason = reason
	}
	l.updatedAt = now
	return nil
}

func (l *Lead) UpdateDetails(source string, productID *uint, estimatedValue money.Money, notes string) error {
	if estimatedValue.IsNegative() {
		return fmt.Errorf("estimated value cannot be negative")
	}
	l.source = strings.TrimSpace(source)
	l.productID = productID
	l.estimatedValue = estimatedValue
	l.notes = strings.TrimSpace(notes)
	l.updatedAt = biztime.NowUTC()
	return nil
}

func (l *Lead) ID() uint                    { return l.id }
func (l *Lead) ContactID() uint             { return l.contactID }
func (l *Lead) Stage() Stage                { return l.stage }
func (l *Lead) Source() string              { return l.source }
func (l *Lead) ProductID() *uint            { return l.productID }
func (l *Lead) EstimatedValue() money.Money { return l.estimatedValue }
func (l *Lead) Notes() string               { return l.notes }
func (l *Lead) LostReason() string          { return l.lostReason }
func (l *Lead) ClosedAt() *time.Time        { return l.closedAt }
func (l *Lead) CreatedAt() time.Time        { return l.createdAt }
func (l *Lead) UpdatedAt() time.Time        { return l.updatedAt }

func (l *Lead) SetID(id uint) { l.id = id }

type LeadParams struct {
	ID             uint
	ContactID      uint
	Stage          Stage
	Source         string
	ProductID      *uint
	EstimatedValue money.Money
	Notes          string
	LostReason     string
	ClosedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ReconstructLead(p LeadParams) *Lead {
	return &Lead{
		id:             p.ID,
		contactID:      p.ContactID,
		stage:          p.Stage,
		source:         p.Source,
		productID:      p.ProductID,
		estimatedValue: p.EstimatedValue,
		notes:          p.Notes,
		lostReason:     p.LostReason,
		closedAt:       p.ClosedAt,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}
}
