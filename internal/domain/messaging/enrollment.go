package messaging

import (
	"fmt"
	"time"

	"github.com/kesher-io/kesher/internal/shared/biztime"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment tracks one contact's progress through a sequence.
type Enrollment struct {
	id          uint
	sequenceID  uint
	contactID   uint
	currentStep int
	nextSendAt  *time.Time
	status      EnrollmentStatus
	enrolledAt  time.Time
	completedAt *time.Time
	updatedAt   time.Time
}

func NewEnrollment(seq *EmailSequence, contactID uint, now time.Time) (*Enrollment, error) {
	if seq == nil || seq.ID() == 0 {
		return nil, fmt.Errorf("sequence is required")
	}
	if contactID == 0 {
		return nil, fmt.Errorf("contact ID is required")
	}
	if !seq.IsActive() {
		return nil, fmt.Errorf("sequence %q is not active", seq.Name())
	}
	first, ok := seq.Step(0)
	if !ok {
		return nil, fmt.Errorf("sequence %q has no steps", seq.Name())
	}
	now = now.UTC()
	next := now.Add(first.Delay())
	return &Enrollment{
		sequenceID: seq.ID(),
		contactID:  contactID,
		nextSendAt: &next,
		status:     EnrollmentActive,
		enrolledAt: now,
		updatedAt:  now,
	}, nil
}

// Advance moves past the step just sent and schedules the following one.
func (e *Enrollment) Advance(seq *EmailSequence, now time.Time) {
	now = now.UTC()
	e.currentStep++
	e.updatedAt = biztime.NowUTC()
	next, ok := seq.Step(e.currentStep)
	if !ok {
		e.status = EnrollmentCompleted
		e.nextSendAt = nil
		e.completedAt = &now
		return
	}
	at := now.Add(next.Delay())
	e.nextSendAt = &at
}

func (e *Enrollment) Cancel() {
	if e.status != EnrollmentActive {
		return
	}
	e.status = EnrollmentCancelled
	e.nextSendAt = nil
	e.updatedAt = biztime.NowUTC()
}

func (e *Enrollment) IsDue(now time.Time) bool {
	return e.status == EnrollmentActive && e.nextSendAt != nil && !e.nextSendAt.After(now)
}

func (e *Enrollment) ID() uint                 { return e.id }
func (e *Enrollment) SequenceID() uint         { return e.sequenceID }
func (e *Enrollment) ContactID() uint          { return e.contactID }
func (e *Enrollment) CurrentStep() int         { return e.currentStep }
func (e *Enrollment) NextSendAt() *time.Time   { return e.nextSendAt }
func (e *Enrollment) Status() EnrollmentStatus { return e.status }
func (e *Enrollment) EnrolledAt() time.Time    { return e.enrolledAt }
func (e *Enrollment) CompletedAt() *time.Time  { return e.completedAt }
func (e *Enrollment) UpdatedAt() time.Time     { return e.updatedAt }

func (e *Enrollment) SetID(id uint) { e.id = id }

type EnrollmentParams struct {
	ID          uint
	SequenceID  uint
	ContactID   uint
	CurrentStep int
	NextSendAt  *time.Time
	Status      EnrollmentStatus
	EnrolledAt  time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

func ReconstructEnrollment(p EnrollmentParams) *Enrollment {
	return &Enrollment{
		id:          p.ID,
		sequenceID:  p.SequenceID,
		contactID:   p.ContactID,
		currentStep: p.CurrentStep,
		nextSendAt:  p.NextSendAt,
		status:      p.Status,
		enrolledAt:  p.EnrolledAt,
		completedAt: p.CompletedAt,
		updatedAt:   p.UpdatedAt,
	}
}
