// Package testutil provides in-memory repositories and fakes for application tests.
package testutil

import (
	"context"
	"sync"

	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/domain/lead"
	"github.com/kesher-io/kesher/internal/domain/product"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

func NewMockLogger() logger.Interface {
	return logger.NewNopLogger()
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type MockContactRepository struct {
	mu       sync.RWMutex
	contacts map[uint]*contact.Contact
	nextID   uint

	CreateErr error
}

func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{contacts: make(map[uint]*contact.Contact)}
}

func (m *MockContactRepository) Create(_ context.Context, c *contact.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if c.Email() != "" {
		for _, other := range m.contacts {
			if other.Email() == c.Email() {
				return apperrors.NewConflictError("a contact with this email already exists")
			}
		}
	}
	m.nextID++
	c.SetID(m.nextID)
	m.contacts[c.ID()] = c
	return nil
}

func (m *MockContactRepository) Update(_ context.Context, c *contact.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[c.ID()]; !ok {
		return apperrors.NewNotFoundError("contact not found")
	}
	m.contacts[c.ID()] = c
	return nil
}

func (m *MockContactRepository) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return apperrors.NewNotFoundError("contact not found")
	}
	delete(m.contacts, id)
	return nil
}

func (m *MockContactRepository) GetByID(_ context.Context, id uint) (*contact.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("contact not found")
	}
	return c, nil
}

func (m *MockContactRepository) GetByEmail(_ context.Context, email string) (*contact.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.contacts {
		if c.Email() != "" && c.Email() == email {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockContactRepository) GetByPhone(_ context.Context, phone string) (*contact.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.contacts {
		if c.Phone() != "" && c.Phone() == phone {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockContactRepository) List(_ context.Context, f contact.Filter) ([]*contact.Contact, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*contact.Contact
	for id := uint(1); id <= m.nextID; id++ {
		c, ok := m.contacts[id]
		if !ok {
			continue
		}
		if f.Status != "" && c.Status() != f.Status {
			continue
		}
		if f.Source != "" && c.Source() != f.Source {
			continue
		}
		out = append(out, c)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

type MockLeadRepository struct {
	mu     sync.RWMutex
	leads  map[uint]*lead.Lead
	nextID uint
}

func NewMockLeadRepository() *MockLeadRepository {
	return &MockLeadRepository{leads: make(map[uint]*lead.Lead)}
}

func (m *MockLeadRepository) Create(_ context.Context, l *lead.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.SetID(m.nextID)
	m.leads[l.ID()] = l
	return nil
}

func (m *MockLeadRepository) Update(_ context.Context, l *lead.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leads[l.ID()]; !ok {
		return apperrors.NewNotFoundError("lead not found")
	}
	m.leads[l.ID()] = l
	return nil
}

func (m *MockLeadRepository) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.leads, id)
	return nil
}

func (m *MockLeadRepository) GetByID(_ context.Context, id uint) (*lead.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leads[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("lead not found")
	}
	return l, nil
}

func (m *MockLeadRepository) List(_ context.Context, f lead.Filter) ([]*lead.Lead, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*lead.Lead
	for id := uint(1); id <= m.nextID; id++ {
		l, ok := m.leads[id]
		if !ok {
			continue
		}
		if f.Stage != "" && l.Stage() != f.Stage {
			continue
		}
		if f.ContactID != 0 && l.ContactID() != f.ContactID {
			continue
		}
		out = append(out, l)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

type MockDealRepository struct {
	mu     sync.RWMutex
	deals  map[uint]*deal.Deal
	nextID uint
}

func NewMockDealRepository() *MockDealRepository {
	return &MockDealRepository{deals: make(map[uint]*deal.Deal)}
}

func (m *MockDealRepository) Create(_ context.Context, d *deal.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d.SetID(m.nextID)
	m.deals[d.ID()] = d
	return nil
}

func (m *MockDealRepository) Update(_ context.Context, d *deal.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deals[d.ID()]; !ok {
		return apperrors.NewNotFoundError("deal not found")
	}
	m.deals[d.ID()] = d
	return nil
}

func (m *MockDealRepository) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deals, id)
	return nil
}

func (m *MockDealRepository) GetByID(_ context.Context, id uint) (*deal.Deal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.deals[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("deal not found")
	}
	return d, nil
}

func (m *MockDealRepository) List(_ context.Context, f deal.Filter) ([]*deal.Deal, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*deal.Deal
	for id := uint(1); id <= m.nextID; id++ {
		d, ok := m.deals[id]
		if !ok {
			continue
		}
		if f.Status != "" && d.Status() != f.Status {
			continue
		}
		if f.ContactID != 0 && d.ContactID() != f.ContactID {
			continue
		}
		out = append(out, d)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

type MockProductRepository struct {
	mu       sync.RWMutex
	products map[uint]*product.Product
	nextID   uint
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[uint]*product.Product)}
}

func (m *MockProductRepository) Create(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.products {
		if other.Slug() == p.Slug() {
			return apperrors.NewConflictError("a product with this slug already exists")
		}
	}
	m.nextID++
	p.SetID(m.nextID)
	m.products[p.ID()] = p
	return nil
}

func (m *MockProductRepository) Update(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID()]; !ok {
		return apperrors.NewNotFoundError("product not found")
	}
	m.products[p.ID()] = p
	return nil
}

func (m *MockProductRepository) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *MockProductRepository) GetByID(_ context.Context, id uint) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	return p, nil
}

func (m *MockProductRepository) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, apperrors.NewNotFoundError("product not found")
}

func (m *MockProductRepository) List(_ context.Context, f product.Filter) ([]*product.Product, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*product.Product
	for id := uint(1); id <= m.nextID; id++ {
		p, ok := m.products[id]
		if !ok {
			continue
		}
		if f.ActiveOnly && !p.IsActive() {
			continue
		}
		if f.Type != "" && p.Type() != f.Type {
			continue
		}
		out = append(out, p)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}
