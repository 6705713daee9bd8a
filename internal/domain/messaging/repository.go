package messaging

import (
	"context"
	"time"
)

type TemplateRepository interface {
	Create(ctx context.Context, t *MessageTemplate) error
	Update(ctx context.Context, t *MessageTemplate) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*MessageTemplate, error)
	// GetByName returns nil, nil when no template has the name.
	GetByName(ctx context.Context, name string) (*MessageTemplate, error)
	List(ctx context.Context, channel Channel) ([]*MessageTemplate, error)
}

type SequenceRepository interface {
	Create(ctx context.Context, s *EmailSequence) error
	Update(ctx context.Context, s *EmailSequence) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*EmailSequence, error)
	List(ctx context.Context) ([]*EmailSequence, error)
	ListActiveByTrigger(ctx context.Context, trigger Trigger) ([]*EmailSequence, error)
}

type EnrollmentFilter struct {
	SequenceID uint
	ContactID  uint
	Status     EnrollmentStatus
	Page       int
	PageSize   int
}

type EnrollmentRepository interface {
	Create(ctx context.Context, e *Enrollment) error
	Update(ctx context.Context, e *Enrollment) error
	GetByID(ctx context.Context, id uint) (*Enrollment, error)
	// GetActive returns nil, nil when the contact has no active enrollment in the sequence.
	GetActive(ctx context.Context, sequenceID, contactID uint) (*Enrollment, error)
	List(ctx context.Context, filter EnrollmentFilter) ([]*Enrollment, int64, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Enrollment, error)
}

type SocialFilter struct {
	Platform  Platform
	Status    SocialStatus
	Direction Direction
	ContactID uint
	Page      int
	PageSize  int
}

type SocialMessageRepository interface {
	Create(ctx context.Context, m *SocialMessage) error
	Update(ctx context.Context, m *SocialMessage) error
	GetByID(ctx context.Context, id uint) (*SocialMessage, error)
	List(ctx context.Context, filter SocialFilter) ([]*SocialMessage, int64, error)
}
