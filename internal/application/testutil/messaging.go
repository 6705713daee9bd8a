package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/kesher-io/kesher/internal/application/common"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type MockTemplateRepository struct {
	mu        sync.RWMutex
	templates map[uint]*messaging.MessageTemplate
	nextID    uint
}

func NewMockTemplateRepository() *MockTemplateRepository {
	return &MockTemplateRepository{templates: make(map[uint]*messaging.MessageTemplate)}
}

func (m *MockTemplateRepository) Create(_ context.Context, t *messaging.MessageTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.templates {
		if other.Name() == t.Name() {
			return apperrors.NewConflictError("a template with this name already exists")
		}
	}
	m.nextID++
	t.SetID(m.nextID)
	m.templates[t.ID()] = t
	return nil
}

func (m *MockTemplateRepository) Update(_ context.Context, t *messaging.MessageTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID()] = t
	return nil
}

func (m *MockTemplateRepository) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return apperrors.NewNotFoundError("template not found")
	}
	delete(m.templates, id)
	return nil
}

func (m *MockTemplateRepository) GetByID(_ context.Context, id uint) (*messaging.MessageTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("template not found")
	}
	return t, nil
}

func (m *MockTemplateRepository) GetByName(_ context.Context, name string) (*messaging.MessageTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.templates {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, nil
}

func (m *MockTemplateRepository) List(_ context.Context, channel messaging.Channel) ([]*messaging.MessageTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*messaging.MessageTemplate
	for id := uint(1); id <= m.nextID; id++ {
		t, ok := m.templates[id]
		if !ok || (channel != "" && t.Channel() != channel) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type MockSequenceRepository struct {
	mu        sync.RWMutex
	sequences map[uint]*messaging.EmailSequence
	nextID    uint
}

func NewMockSequenceRepository() *MockSequenceRepository {
	return &MockSequenceRepository{sequences: make(map[uint]*messaging.EmailSequence)}
}

func (m *MockSequenceRepository) Create(_ context.Context, s *messaging.EmailSequence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.SetID(m.nextID)
	m.sequences[s.ID()] = s
	return nil
}

func (m *MockSequenceRepository) Update(_ context.Context, s *messaging.EmailSequence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[s.ID()] = s
	return nil
}

func (m *MockSequenceRepository) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sequences, id)
	return nil
}

func (m *MockSequenceRepository) GetByID(_ context.Context, id uint) (*messaging.EmailSequence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sequences[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("sequence not found")
	}
	return s, nil
}

func (m *MockSequenceRepository) List(_ context.Context) ([]*messaging.EmailSequence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*messaging.EmailSequence
	for id := uint(1); id <= m.nextID; id++ {
		if s, ok := m.sequences[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockSequenceRepository) ListActiveByTrigger(_ context.Context, trigger messaging.Trigger) ([]*messaging.EmailSequence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*messaging.EmailSequence
	for id := uint(1); id <= m.nextID; id++ {
		if s, ok := m.sequences[id]; ok && s.IsActive() && s.Trigger() == trigger {
			out = append(out, s)
		}
	}
	return out, nil
}

type MockEnrollmentRepository struct {
	mu          sync.RWMutex
	enrollments map[uint]*messaging.Enrollment
	nextID      uint
}

func NewMockEnrollmentRepository() *MockEnrollmentRepository {
	return &MockEnrollmentRepository{enrollments: make(map[uint]*messaging.Enrollment)}
}

func (m *MockEnrollmentRepository) Create(_ context.Context, e *messaging.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.SetID(m.nextID)
	m.enrollments[e.ID()] = e
	return nil
}

func (m *MockEnrollmentRepository) Update(_ context.Context, e *messaging.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments[e.ID()] = e
	return nil
}

func (m *MockEnrollmentRepository) GetByID(_ context.Context, id uint) (*messaging.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.enrollments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("enrollment not found")
	}
	return e, nil
}

func (m *MockEnrollmentRepository) GetActive(_ context.Context, sequenceID, contactID uint) (*messaging.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.enrollments {
		if e.SequenceID() == sequenceID && e.ContactID() == contactID && e.Status() == messaging.EnrollmentActive {
			return e, nil
		}
	}
	return nil, nil
}

func (m *MockEnrollmentRepository) List(_ context.Context, f messaging.EnrollmentFilter) ([]*messaging.Enrollment, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*messaging.Enrollment
	for id := uint(1); id <= m.nextID; id++ {
		e, ok := m.enrollments[id]
		if !ok {
			continue
		}
		if f.SequenceID != 0 && e.SequenceID() != f.SequenceID {
			continue
		}
		if f.ContactID != 0 && e.ContactID() != f.ContactID {
			continue
		}
		if f.Status != "" && e.Status() != f.Status {
			continue
		}
		out = append(out, e)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

func (m *MockEnrollmentRepository) ListDue(_ context.Context, now time.Time, limit int) ([]*messaging.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*messaging.Enrollment
	for id := uint(1); id <= m.nextID; id++ {
		e, ok := m.enrollments[id]
		if !ok || !e.IsDue(now) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type MockSocialMessageRepository struct {
	mu       sync.RWMutex
	messages map[uint]*messaging.SocialMessage
	nextID   uint
}

func NewMockSocialMessageRepository() *MockSocialMessageRepository {
	return &MockSocialMessageRepository{messages: make(map[uint]*messaging.SocialMessage)}
}

func (m *MockSocialMessageRepository) Create(_ context.Context, msg *messaging.SocialMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.SetID(m.nextID)
	m.messages[msg.ID()] = msg
	return nil
}

func (m *MockSocialMessageRepository) Update(_ context.Context, msg *messaging.SocialMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ID()] = msg
	return nil
}

func (m *MockSocialMessageRepository) GetByID(_ context.Context, id uint) (*messaging.SocialMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("social message not found")
	}
	return msg, nil
}

func (m *MockSocialMessageRepository) List(_ context.Context, f messaging.SocialFilter) ([]*messaging.SocialMessage, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*messaging.SocialMessage
	for id := uint(1); id <= m.nextID; id++ {
		msg, ok := m.messages[id]
		if !ok {
			continue
		}
		if f.Platform != "" && msg.Platform() != f.Platform {
			continue
		}
		if f.Status != "" && msg.Status() != f.Status {
			continue
		}
		if f.Direction != "" && msg.Direction() != f.Direction {
			continue
		}
		out = append(out, msg)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

// MockMailer keeps every message it was asked to send.
type MockMailer struct {
	mu   sync.Mutex
	Sent []common.Email
	Err  error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(_ context.Context, msg common.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *MockMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// MockSequenceTrigger records the trigger calls it received.
type MockSequenceTrigger struct {
	mu    sync.Mutex
	Calls []TriggerCall
}

type TriggerCall struct {
	Trigger   messaging.Trigger
	ContactID uint
}

func (m *MockSequenceTrigger) Fire(_ context.Context, trigger messaging.Trigger, contactID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, TriggerCall{Trigger: trigger, ContactID: contactID})
	return nil
}

type SentTemplate struct {
	Template  string
	ContactID uint
	Vars      map[string]string
}

// MockTemplateSender records template sends instead of rendering them.
type MockTemplateSender struct {
	mu   sync.Mutex
	Sent []SentTemplate
	Err  error
}

func (m *MockTemplateSender) SendTemplate(_ context.Context, name string, contactID uint, vars map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentTemplate{Template: name, ContactID: contactID, Vars: vars})
	return nil
}
