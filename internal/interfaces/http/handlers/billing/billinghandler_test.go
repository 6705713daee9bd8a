package billing

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/kesher-io/kesher/internal/application/billing"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/testutil"
	"github.com/kesher-io/kesher/internal/shared/errors"
)

// =====================================================================
// Mocks
// =====================================================================

type mockPlanService struct {
	result     *appbilling.PaymentPlanDTO
	err        error
	lastCmd    appbilling.CreatePlanCommand
	lastWithin time.Duration
	called     bool
}

func (m *mockPlanService) Create(ctx context.Context, cmd appbilling.CreatePlanCommand) (*appbilling.PaymentPlanDTO, error) {
	m.called = true
	m.lastCmd = cmd
	return m.result, m.err
}

func (m *mockPlanService) Get(ctx context.Context, id uint) (*appbilling.PaymentPlanDTO, error) {
	return m.result, m.err
}

func (m *mockPlanService) List(ctx context.Context, q appbilling.ListPlansQuery) (*commondto.ListResult[*appbilling.PaymentPlanDTO], error) {
	return &commondto.ListResult[*appbilling.PaymentPlanDTO]{Items: []*appbilling.PaymentPlanDTO{}, Page: 1, PageSize: 20}, m.err
}

func (m *mockPlanService) Cancel(ctx context.Context, id uint) (*appbilling.PaymentPlanDTO, error) {
	return m.result, m.err
}

func (m *mockPlanService) DueSoon(ctx context.Context, within time.Duration) ([]*appbilling.InstallmentDTO, error) {
	m.lastWithin = within
	return []*appbilling.InstallmentDTO{}, m.err
}

type mockRecurringService struct {
	result     *appbilling.RecurringPaymentDTO
	err        error
	lastID     uint
	lastToken  string
	lastAmount string
	paused     bool
}

func (m *mockRecurringService) Create(ctx context.Context, cmd appbilling.CreateRecurringCommand) (*appbilling.RecurringPaymentDTO, error) {
	return m.result, m.err
}

func (m *mockRecurringService) Get(ctx context.Context, id uint) (*appbilling.RecurringPaymentDTO, error) {
	m.lastID = id
	return m.result, m.err
}

func (m *mockRecurringService) List(ctx context.Context, q appbilling.ListRecurringQuery) (*commondto.ListResult[*appbilling.RecurringPaymentDTO], error) {
	return &commondto.ListResult[*appbilling.RecurringPaymentDTO]{Items: []*appbilling.RecurringPaymentDTO{}, Page: 1, PageSize: 20}, m.err
}

func (m *mockRecurringService) Pause(ctx context.Context, id uint) (*appbilling.RecurringPaymentDTO, error) {
	m.lastID = id
	m.paused = true
	return m.result, m.err
}

func (m *mockRecurringService) Resume(ctx context.Context, id uint) (*appbilling.RecurringPaymentDTO, error) {
	m.lastID = id
	return m.result, m.err
}

func (m *mockRecurringService) Cancel(ctx context.Context, id uint) (*appbilling.RecurringPaymentDTO, error) {
	m.lastID = id
	return m.result, m.err
}

func (m *mockRecurringService) UpdateCard(ctx context.Context, id uint, token, expiry string) (*appbilling.RecurringPaymentDTO, error) {
	m.lastToken = token
	return m.result, m.err
}

func (m *mockRecurringService) UpdateAmount(ctx context.Context, id uint, amount string) (*appbilling.RecurringPaymentDTO, error) {
	m.lastAmount = amount
	return m.result, m.err
}

type mockProcessUC struct {
	result *appbilling.ProcessResult
	err    error
}

func (m *mockProcessUC) Execute(ctx context.Context) (*appbilling.ProcessResult, error) {
	return m.result, m.err
}

type mockReminderService struct {
	result *appbilling.ReminderDTO
	err    error
	query  appbilling.ListRemindersQuery
}

func (m *mockReminderService) List(ctx context.Context, q appbilling.ListRemindersQuery) (*commondto.ListResult[*appbilling.ReminderDTO], error) {
	m.query = q
	return &commondto.ListResult[*appbilling.ReminderDTO]{Items: []*appbilling.ReminderDTO{}, Page: 1, PageSize: 20}, m.err
}

func (m *mockReminderService) Cancel(ctx context.Context, id uint) (*appbilling.ReminderDTO, error) {
	return m.result, m.err
}

type mockSendUC struct {
	result *appbilling.SendResult
	err    error
}

func (m *mockSendUC) Execute(ctx context.Context) (*appbilling.SendResult, error) {
	return m.result, m.err
}

// =====================================================================
// Plans
// =====================================================================

func TestPlanHandler_Create(t *testing.T) {
	valid := map[string]any{
		"contact_id":        1,
		"total":             "3000",
		"installment_count": 3,
		"frequency":         "monthly",
		"start_date":        "2026-01-31",
	}

	t.Run("created", func(t *testing.T) {
		svc := &mockPlanService{result: &appbilling.PaymentPlanDTO{ID: 2}}
		h := NewPlanHandler(svc, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/payment-plans", valid)
		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 3, svc.lastCmd.InstallmentCount)
		assert.Equal(t, "2026-01-31", svc.lastCmd.StartDate)
	})

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"single installment", func(b map[string]any) { b["installment_count"] = 1 }},
		{"too many installments", func(b map[string]any) { b["installment_count"] = 37 }},
		{"yearly plan", func(b map[string]any) { b["frequency"] = "yearly" }},
		{"no start date", func(b map[string]any) { delete(b, "start_date") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{}
			for k, v := range valid {
				body[k] = v
			}
			tt.mutate(body)

			svc := &mockPlanService{}
			h := NewPlanHandler(svc, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/payment-plans", body)
			h.Create(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, svc.called)
		})
	}
}

func TestPlanHandler_DueSoon(t *testing.T) {
	tests := []struct {
		query string
		want  time.Duration
	}{
		{"", 7 * 24 * time.Hour},
		{"14", 14 * 24 * time.Hour},
		{"365", 90 * 24 * time.Hour},
		{"-3", 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		svc := &mockPlanService{}
		h := NewPlanHandler(svc, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/payment-plans/due", nil)
		testutil.SetQueryParams(c, map[string]string{"days": tt.query})
		h.DueSoon(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tt.want, svc.lastWithin, "days=%q", tt.query)
	}
}

// =====================================================================
// Recurring payments
// =====================================================================

func TestRecurringHandler_Lifecycle(t *testing.T) {
	svc := &mockRecurringService{result: &appbilling.RecurringPaymentDTO{ID: 8, Status: "paused"}}
	h := NewRecurringHandler(svc, &mockProcessUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/recurring-payments/8/pause", nil)
	testutil.SetURLParam(c, "id", "8")
	h.Pause(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.paused)
	assert.Equal(t, uint(8), svc.lastID)

	svc.err = errors.NewValidationError("recurring payment is not active")
	c, w = testutil.NewTestContext(http.MethodPost, "/recurring-payments/8/pause", nil)
	testutil.SetURLParam(c, "id", "8")
	h.Pause(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecurringHandler_UpdateCard(t *testing.T) {
	svc := &mockRecurringService{result: &appbilling.RecurringPaymentDTO{ID: 8}}
	h := NewRecurringHandler(svc, &mockProcessUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPut, "/recurring-payments/8/card", map[string]string{"card_token": "tok_new", "card_expiry": "1228"})
	testutil.SetURLParam(c, "id", "8")
	h.UpdateCard(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok_new", svc.lastToken)
}

func TestRecurringHandler_RunDue(t *testing.T) {
	uc := &mockProcessUC{result: &appbilling.ProcessResult{Charged: 4, Failed: 1}}
	h := NewRecurringHandler(&mockRecurringService{}, uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/recurring-payments/run", nil)
	h.RunDue(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]int
	_, err := testutil.DecodeData(w, &got)
	require.NoError(t, err)
	assert.Equal(t, 4, got["charged"])
	assert.Equal(t, 1, got["failed"])
}

// =====================================================================
// Reminders
// =====================================================================

func TestReminderHandler(t *testing.T) {
	svc := &mockReminderService{}
	send := &mockSendUC{result: &appbilling.SendResult{Sent: 2}}
	h := NewReminderHandler(svc, send, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/reminders", nil)
	testutil.SetQueryParams(c, map[string]string{"kind": "installment_due", "status": "pending"})
	h.List(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "installment_due", svc.query.Kind)

	c, w = testutil.NewTestContext(http.MethodPost, "/reminders/send", nil)
	h.SendDue(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sent":2`)

	svc.err = errors.NewNotFoundError("reminder not found")
	c, w = testutil.NewTestContext(http.MethodPost, "/reminders/3/cancel", nil)
	testutil.SetURLParam(c, "id", "3")
	h.Cancel(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
