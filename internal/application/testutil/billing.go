package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/kesher-io/kesher/internal/domain/billing"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type MockPaymentPlanRepository struct {
	mu            sync.RWMutex
	plans         map[uint]*billing.PaymentPlan
	nextID        uint
	nextInstallID uint
}

func NewMockPaymentPlanRepository() *MockPaymentPlanRepository {
	return &MockPaymentPlanRepository{plans: make(map[uint]*billing.PaymentPlan)}
}

func (m *MockPaymentPlanRepository) Create(_ context.Context, plan *billing.PaymentPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	plan.SetID(m.nextID)
	for _, inst := range plan.Installments() {
		m.nextInstallID++
		inst.ID = m.nextInstallID
	}
	m.plans[plan.ID()] = plan
	return nil
}

func (m *MockPaymentPlanRepository) Update(_ context.Context, plan *billing.PaymentPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[plan.ID()]; !ok {
		return apperrors.NewNotFoundError("payment plan not found")
	}
	m.plans[plan.ID()] = plan
	return nil
}

func (m *MockPaymentPlanRepository) GetByID(_ context.Context, id uint) (*billing.PaymentPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("payment plan not found")
	}
	return plan, nil
}

func (m *MockPaymentPlanRepository) GetByInstallmentID(_ context.Context, installmentID uint) (*billing.PaymentPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, plan := range m.plans {
		if _, ok := plan.Installment(installmentID); ok {
			return plan, nil
		}
	}
	return nil, apperrors.NewNotFoundError("installment not found")
}

func (m *MockPaymentPlanRepository) List(_ context.Context, f billing.PlanFilter) ([]*billing.PaymentPlan, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*billing.PaymentPlan
	for id := uint(1); id <= m.nextID; id++ {
		plan, ok := m.plans[id]
		if !ok {
			continue
		}
		if f.Status != "" && plan.Status() != f.Status {
			continue
		}
		if f.ContactID != 0 && plan.ContactID() != f.ContactID {
			continue
		}
		out = append(out, plan)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

type MockRecurringPaymentRepository struct {
	mu       sync.RWMutex
	items    map[uint]*billing.RecurringPayment
	versions map[uint]int
	nextID   uint
}

func NewMockRecurringPaymentRepository() *MockRecurringPaymentRepository {
	return &MockRecurringPaymentRepository{
		items:    make(map[uint]*billing.RecurringPayment),
		versions: make(map[uint]int),
	}
}

func (m *MockRecurringPaymentRepository) Create(_ context.Context, r *billing.RecurringPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.SetID(m.nextID)
	m.items[r.ID()] = r
	m.versions[r.ID()] = r.Version()
	return nil
}

func (m *MockRecurringPaymentRepository) Update(_ context.Context, r *billing.RecurringPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.versions[r.ID()]
	if !ok {
		return apperrors.NewNotFoundError("recurring payment not found")
	}
	if stored >= r.Version() {
		return apperrors.NewConflictError("recurring payment was modified concurrently")
	}
	m.items[r.ID()] = r
	m.versions[r.ID()] = r.Version()
	return nil
}

func (m *MockRecurringPaymentRepository) GetByID(_ context.Context, id uint) (*billing.RecurringPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("recurring payment not found")
	}
	return r, nil
}

func (m *MockRecurringPaymentRepository) List(_ context.Context, f billing.RecurringFilter) ([]*billing.RecurringPayment, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*billing.RecurringPayment
	for id := uint(1); id <= m.nextID; id++ {
		r, ok := m.items[id]
		if !ok {
			continue
		}
		if f.Status != "" && r.Status() != f.Status {
			continue
		}
		if f.ContactID != 0 && r.ContactID() != f.ContactID {
			continue
		}
		out = append(out, r)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

func (m *MockRecurringPaymentRepository) ListDue(_ context.Context, now time.Time, limit int) ([]*billing.RecurringPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*billing.RecurringPayment
	for id := uint(1); id <= m.nextID; id++ {
		r, ok := m.items[id]
		if !ok || !r.IsDue(now) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type MockReminderRepository struct {
	mu        sync.RWMutex
	reminders map[uint]*billing.Reminder
	nextID    uint
}

func NewMockReminderRepository() *MockReminderRepository {
	return &MockReminderRepository{reminders: make(map[uint]*billing.Reminder)}
}

func (m *MockReminderRepository) Create(_ context.Context, r *billing.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.SetID(m.nextID)
	m.reminders[r.ID()] = r
	return nil
}

func (m *MockReminderRepository) CreateBatch(ctx context.Context, reminders []*billing.Reminder) error {
	for _, r := range reminders {
		if err := m.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockReminderRepository) Update(_ context.Context, r *billing.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders[r.ID()] = r
	return nil
}

func (m *MockReminderRepository) GetByID(_ context.Context, id uint) (*billing.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reminders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("reminder not found")
	}
	return r, nil
}

func (m *MockReminderRepository) List(_ context.Context, f billing.ReminderFilter) ([]*billing.Reminder, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*billing.Reminder
	for id := uint(1); id <= m.nextID; id++ {
		r, ok := m.reminders[id]
		if !ok {
			continue
		}
		if f.Status != "" && r.Status() != f.Status {
			continue
		}
		if f.Kind != "" && r.Kind() != f.Kind {
			continue
		}
		if f.ContactID != 0 && r.ContactID() != f.ContactID {
			continue
		}
		out = append(out, r)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

func (m *MockReminderRepository) ListDue(_ context.Context, now time.Time, limit int) ([]*billing.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*billing.Reminder
	for id := uint(1); id <= m.nextID; id++ {
		r, ok := m.reminders[id]
		if !ok || r.Status() != billing.ReminderStatusPending || r.RemindAt().After(now) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockReminderRepository) CancelPendingForInstallment(_ context.Context, installmentID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reminders {
		if r.InstallmentID() != nil && *r.InstallmentID() == installmentID && r.Status() == billing.ReminderStatusPending {
			_ = r.Cancel()
		}
	}
	return nil
}

// All returns every stored reminder in creation order.
func (m *MockReminderRepository) All() []*billing.Reminder {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*billing.Reminder
	for id := uint(1); id <= m.nextID; id++ {
		if r, ok := m.reminders[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
