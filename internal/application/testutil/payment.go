package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kesher-io/kesher/internal/application/payment/paymentgateway"
	"github.com/kesher-io/kesher/internal/domain/invoice"
	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

// MockPaymentRepository enforces the version check the real repository does.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[uint]*payment.Payment
	versions map[uint]int
	nextID   uint
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[uint]*payment.Payment),
		versions: make(map[uint]int),
	}
}

func (m *MockPaymentRepository) Create(_ context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.SetID(m.nextID)
	m.payments[p.ID()] = p
	m.versions[p.ID()] = p.Version()
	return nil
}

func (m *MockPaymentRepository) Update(_ context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.versions[p.ID()]
	if !ok {
		return apperrors.NewNotFoundError("payment not found")
	}
	if stored >= p.Version() {
		return apperrors.NewConflictError("payment was modified concurrently")
	}
	m.payments[p.ID()] = p
	m.versions[p.ID()] = p.Version()
	return nil
}

func (m *MockPaymentRepository) GetByID(_ context.Context, id uint) (*payment.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("payment not found")
	}
	return p, nil
}

func (m *MockPaymentRepository) GetByReference(_ context.Context, reference string) (*payment.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.Reference() == reference {
			return p, nil
		}
	}
	return nil, apperrors.NewNotFoundError("payment not found")
}

func (m *MockPaymentRepository) GetByTransactionID(_ context.Context, gateway, transactionID string) (*payment.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.Gateway() == gateway && p.TransactionID() == transactionID {
			return p, nil
		}
	}
	return nil, apperrors.NewNotFoundError("payment not found")
}

func (m *MockPaymentRepository) List(_ context.Context, f payment.Filter) ([]*payment.Payment, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*payment.Payment
	for id := uint(1); id <= m.nextID; id++ {
		p, ok := m.payments[id]
		if !ok {
			continue
		}
		if f.Status != "" && p.Status() != f.Status {
			continue
		}
		if f.ContactID != 0 && p.ContactID() != f.ContactID {
			continue
		}
		if f.Gateway != "" && p.Gateway() != f.Gateway {
			continue
		}
		out = append(out, p)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

func (m *MockPaymentRepository) ListPendingBefore(_ context.Context, before time.Time, limit int) ([]*payment.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*payment.Payment
	for id := uint(1); id <= m.nextID; id++ {
		p, ok := m.payments[id]
		if !ok || p.Status() != vo.PaymentStatusPending || !p.CreatedAt().Before(before) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockPaymentRepository) SumSettledByDeal(_ context.Context, dealID uint, currency string) (money.Money, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, p := range m.payments {
		if p.DealID() == nil || *p.DealID() != dealID || p.Amount().Currency() != currency {
			continue
		}
		if p.Status() == vo.PaymentStatusCompleted || p.Status() == vo.PaymentStatusPartiallyRefunded {
			sum += p.Amount().Amount() - p.RefundedAmount().Amount()
		}
	}
	return money.New(sum, currency), nil
}

type MockWebhookEventRepository struct {
	mu     sync.Mutex
	events map[string]*payment.WebhookEvent
}

func NewMockWebhookEventRepository() *MockWebhookEventRepository {
	return &MockWebhookEventRepository{events: make(map[string]*payment.WebhookEvent)}
}

func (m *MockWebhookEventRepository) Record(_ context.Context, e *payment.WebhookEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := e.Gateway + "|" + e.EventID
	if _, dup := m.events[key]; dup {
		return false, nil
	}
	m.events[key] = e
	return true, nil
}

func (m *MockWebhookEventRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[uint]*invoice.Invoice
	nextID   uint
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{invoices: make(map[uint]*invoice.Invoice)}
}

func (m *MockInvoiceRepository) Create(_ context.Context, inv *invoice.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.invoices {
		if other.Number() == inv.Number() || other.PaymentID() == inv.PaymentID() {
			return apperrors.NewConflictError("invoice already exists")
		}
	}
	m.nextID++
	inv.SetID(m.nextID)
	m.invoices[inv.ID()] = inv
	return nil
}

func (m *MockInvoiceRepository) Update(_ context.Context, inv *invoice.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.ID()] = inv
	return nil
}

func (m *MockInvoiceRepository) GetByID(_ context.Context, id uint) (*invoice.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("invoice not found")
	}
	return inv, nil
}

func (m *MockInvoiceRepository) GetByPaymentID(_ context.Context, paymentID uint) (*invoice.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inv := range m.invoices {
		if inv.PaymentID() == paymentID {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *MockInvoiceRepository) List(_ context.Context, f invoice.Filter) ([]*invoice.Invoice, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*invoice.Invoice
	for id := uint(1); id <= m.nextID; id++ {
		inv, ok := m.invoices[id]
		if !ok {
			continue
		}
		if f.Status != "" && inv.Status() != f.Status {
			continue
		}
		if f.ContactID != 0 && inv.ContactID() != f.ContactID {
			continue
		}
		out = append(out, inv)
	}
	return paginate(out, f.Page, f.PageSize), int64(len(out)), nil
}

func (m *MockInvoiceRepository) NextSequence(_ context.Context, year int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max := 0
	for _, inv := range m.invoices {
		y, seq, err := invoice.ParseNumber(inv.Number())
		if err == nil && y == year && seq > max {
			max = seq
		}
	}
	return max + 1, nil
}

// MockGateway returns canned results and records the requests it saw.
type MockGateway struct {
	mu sync.Mutex

	GatewayName  string
	ChargeResult *paymentgateway.ChargeResult
	ChargeErr    error
	RefundResult *paymentgateway.RefundResult
	RefundErr    error
	VerifyErr    error
	Event        *paymentgateway.WebhookEvent
	ParseErr     error
	ConfirmErr   error

	Charges   []paymentgateway.ChargeRequest
	Refunds   []paymentgateway.RefundRequest
	Confirmed []string
}

func NewMockGateway(name string) *MockGateway {
	return &MockGateway{
		GatewayName:  name,
		ChargeResult: &paymentgateway.ChargeResult{Status: paymentgateway.ChargeApproved, TransactionID: "tx-1"},
		RefundResult: &paymentgateway.RefundResult{RefundID: "rf-1", Approved: true},
	}
}

func (g *MockGateway) Name() string { return g.GatewayName }

func (g *MockGateway) ProcessPayment(_ context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Charges = append(g.Charges, req)
	if g.ChargeErr != nil {
		return nil, g.ChargeErr
	}
	res := *g.ChargeResult
	return &res, nil
}

func (g *MockGateway) RefundPayment(_ context.Context, req paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Refunds = append(g.Refunds, req)
	if g.RefundErr != nil {
		return nil, g.RefundErr
	}
	res := *g.RefundResult
	return &res, nil
}

func (g *MockGateway) VerifyWebhook(http.Header, []byte) error {
	return g.VerifyErr
}

func (g *MockGateway) ParseWebhook(http.Header, []byte) (*paymentgateway.WebhookEvent, error) {
	if g.ParseErr != nil {
		return nil, g.ParseErr
	}
	ev := *g.Event
	return &ev, nil
}

func (g *MockGateway) ConfirmWebhook(_ context.Context, event *paymentgateway.WebhookEvent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Confirmed = append(g.Confirmed, event.EventID)
	return g.ConfirmErr
}

// TxRunner runs fn directly. Set Err to simulate a failed commit.
type TxRunner struct {
	Err error
}

func (t *TxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return t.Err
}

type MockInvoiceIssuer struct {
	mu       sync.Mutex
	Issued   []uint
	Credited []uint
	Err      error
}

func (m *MockInvoiceIssuer) IssueForPayment(_ context.Context, paymentID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Issued = append(m.Issued, paymentID)
	return nil
}

func (m *MockInvoiceIssuer) CreditForPayment(_ context.Context, paymentID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Credited = append(m.Credited, paymentID)
	return nil
}
