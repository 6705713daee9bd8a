package messaging

import (
	"fmt"
	"strings"
	"time"

	"github.com/kesher-io/kesher/internal/shared/biztime"
)

type Trigger string

const (
	TriggerManual           Trigger = "manual"
	TriggerLeadCreated      Trigger = "lead_created"
	TriggerPaymentCompleted Trigger = "payment_completed"
)

func (t Trigger) IsValid() bool {
	return t == TriggerManual || t == TriggerLeadCreated || t == TriggerPaymentCompleted
}

// SequenceStep sends TemplateName DelayHours after the previous step (or enrollment).
type SequenceStep struct {
	DelayHours   int    `json:"delay_hours"`
	TemplateName string `json:"template_name"`
}

func (s SequenceStep) Delay() time.Duration {
	return time.Duration(s.DelayHours) * time.Hour
}

const maxSequenceSteps = 50

type EmailSequence struct {
	id          uint
	name        string
	description string
	trigger     Trigger
	active      bool
	steps       []SequenceStep
	createdAt   time.Time
	updatedAt   time.Time
}

func NewEmailSequence(name, description string, trigger Trigger, steps []SequenceStep) (*EmailSequence, error) {
	s := &EmailSequence{active: true}
	if err := s.apply(name, description, trigger, steps); err != nil {
		return nil, err
	}
	now := biztime.NowUTC()
	s.createdAt = now
	s.updatedAt = now
	return s, nil
}

func (s *EmailSequence) apply(name, description string, trigger Trigger, steps []SequenceStep) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("sequence name is required")
	}
	if !trigger.IsValid() {
		return fmt.Errorf("invalid trigger: %s", trigger)
	}
	if len(steps) == 0 {
		return fmt.Errorf("a sequence needs at least one step")
	}
	if len(steps) > maxSequenceSteps {
		return fmt.Errorf("a sequence can have at most %d steps", maxSequenceSteps)
	}
	clean := make([]SequenceStep, len(steps))
	for i, st := range steps {
		if st.DelayHours < 0 {
			return fmt.Errorf("step %d: delay cannot be negative", i+1)
		}
		st.TemplateName = strings.TrimSpace(st.TemplateName)
		if st.TemplateName == "" {
			return fmt.Errorf("step %d: template name is required", i+1)
		}
		clean[i] = st
	}
	s.name = name
	s.description = strings.TrimSpace(description)
	s.trigger = trigger
	s.steps = clean
	return nil
}

func (s *EmailSequence) Update(name, description string, trigger Trigger, steps []SequenceStep) error {
	if err := s.apply(name, description, trigger, steps); err != nil {
		return err
	}
	s.updatedAt = biztime.NowUTC()
	return nil
}

func (s *EmailSequence) SetActive(active bool) {
	s.active = active
	s.updatedAt = biztime.NowUTC()
}

// Step returns the step at index i.
func (s *EmailSequence) Step(i int) (SequenceStep, bool) {
	if i < 0 || i >= len(s.steps) {
		return SequenceStep{}, false
	}
	return s.steps[i], true
}

func (s *EmailSequence) ID() uint              { return s.id }
func (s *EmailSequence) Name() string          { return s.name }
func (s *EmailSequence) Description() string   { return s.description }
func (s *EmailSequence) Trigger() Trigger      { return s.trigger }
func (s *EmailSequence) IsActive() bool        { return s.active }
func (s *EmailSequence) Steps() []SequenceStep { return s.steps }
func (s *EmailSequence) CreatedAt() time.Time  { return s.createdAt }
func (s *EmailSequence) UpdatedAt() time.Time  { return s.updatedAt }

func (s *EmailSequence) SetID(id uint) { s.id = id }

func ReconstructEmailSequence(id uint, name, description string, trigger Trigger, active bool, steps []SequenceStep, createdAt, updatedAt time.Time) *EmailSequence {
	return &EmailSequence{
		id:          id,
		name:        name,
		description: description,
		trigger:     trigger,
		active:      active,
		steps:       steps,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}
