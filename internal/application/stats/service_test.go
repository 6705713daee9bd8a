package stats

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/testutil"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type fakeQuerier struct {
	calls     atomic.Int32
	err       error
	paid      []PaidAmount
	recurring []RecurringAmount
}

func (f *fakeQuerier) hit() error {
	f.calls.Add(1)
	return f.err
}

func (f *fakeQuerier) ContactsByStatus(context.Context) ([]StatusCount, error) {
	return []StatusCount{{Key: "lead", Count: 7}, {Key: "customer", Count: 3}}, f.hit()
}

func (f *fakeQuerier) CountContactsSince(context.Context, time.Time) (int64, error) {
	return 4, f.hit()
}

func (f *fakeQuerier) LeadsByStage(context.Context) ([]StatusCount, error) {
	return []StatusCount{
		{Key: "new", Count: 5},
		{Key: "qualified", Count: 2},
		{Key: "won", Count: 3},
		{Key: "lost", Count: 1},
	}, f.hit()
}

func (f *fakeQuerier) SumDealAmount(_ context.Context, status string, _ *time.Time) (int64, error) {
	if status == "open" {
		return 450000, f.hit()
	}
	return 120000, f.hit()
}

func (f *fakeQuerier) SumRevenue(_ context.Context, since *time.Time) (int64, error) {
	if since != nil {
		return 50000, f.hit()
	}
	return 900000, f.hit()
}

func (f *fakeQuerier) SumRefunded(context.Context) (int64, error) { return 10000, f.hit() }

func (f *fakeQuerier) CountPaymentsByStatus(context.Context, string) (int64, error) {
	return 2, f.hit()
}

func (f *fakeQuerier) PaidAmountsSince(context.Context, time.Time) ([]PaidAmount, error) {
	return f.paid, f.hit()
}

func (f *fakeQuerier) RevenueByGateway(context.Context) ([]GatewayRevenue, error) {
	return []GatewayRevenue{{Gateway: "tranzila", Amount: 800000, Count: 8}, {Gateway: "manual", Amount: 100000, Count: 1}}, f.hit()
}

func (f *fakeQuerier) ActiveRecurring(context.Context) ([]RecurringAmount, error) {
	return f.recurring, f.hit()
}

func (f *fakeQuerier) CountSocialByStatus(context.Context, string) (int64, error) {
	return 6, f.hit()
}

func (f *fakeQuerier) CountEnrollmentsByStatus(context.Context, string) (int64, error) {
	return 9, f.hit()
}

func (f *fakeQuerier) CountRemindersByStatus(context.Context, string) (int64, error) {
	return 1, f.hit()
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0.0, ConversionRate(0, 0))
	assert.Equal(t, 0.75, ConversionRate(3, 1))
	assert.Equal(t, 0.3333, ConversionRate(1, 2))
	assert.Equal(t, 1.0, ConversionRate(4, 0))
}

func TestMonthlySeries_UsesBusinessMonths(t *testing.T) {
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	paid := []PaidAmount{
		// 01:30 on April 1st in Jerusalem.
		{PaidAt: time.Date(2026, 3, 31, 22, 30, 0, 0, time.UTC), Amount: 30000},
		{PaidAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), Amount: 12000},
		{PaidAt: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC), Amount: 99999},
	}

	series := MonthlySeries(paid, now, 12)
	require.Len(t, series, 12)
	assert.Equal(t, "2025-05", series[0].Month)
	assert.Equal(t, "2026-04", series[11].Month)
	assert.Equal(t, int64(30000), series[11].Amount)
	assert.Equal(t, int64(12000), series[10].Amount)
	assert.Zero(t, series[0].Amount)
}

func TestMonthlyRecurringRevenue(t *testing.T) {
	got := MonthlyRecurringRevenue([]RecurringAmount{
		{Frequency: "monthly", Amount: 25000},
		{Frequency: "weekly", Amount: 12000},
		{Frequency: "quarterly", Amount: 60000},
		{Frequency: "yearly", Amount: 120000},
	}, "ILS")
	// 25000 + 52000 + 20000 + 10000
	assert.Equal(t, int64(107000), got.Amount())
	assert.Equal(t, "ILS", got.Currency())
}

func TestService_Overview(t *testing.T) {
	q := &fakeQuerier{recurring: []RecurringAmount{{Frequency: "monthly", Amount: 25000}}}
	svc := NewService(q, nil, 0, "ILS", testutil.NewMockLogger())

	out, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), out.CRM.TotalContacts)
	assert.Equal(t, int64(0), out.CRM.ContactsByStatus["inactive"])
	assert.Equal(t, int64(4), out.CRM.NewContactsThisMonth)

	assert.Equal(t, int64(7), out.Funnel.OpenLeads)
	assert.Equal(t, int64(0), out.Funnel.LeadsByStage["proposal"])
	assert.Equal(t, 0.75, out.Funnel.ConversionRate)
	assert.Equal(t, int64(450000), out.Funnel.OpenDealValue.Amount)
	assert.Equal(t, "1200.00", out.Funnel.WonValueThisMonth.Display)

	assert.Equal(t, int64(900000), out.Payments.RevenueTotal.Amount)
	assert.Equal(t, int64(50000), out.Payments.RevenueThisMonth.Amount)
	assert.Equal(t, int64(2), out.Payments.PendingCount)
	assert.Len(t, out.Payments.MonthlyRevenue, 12)
	assert.Len(t, out.Payments.RevenueByGateway, 2)
	assert.Equal(t, int64(1), out.Payments.ActiveRecurring)
	assert.Equal(t, int64(25000), out.Payments.MonthlyRecurringRevenue.Amount)

	assert.Equal(t, int64(6), out.Messaging.UnreadSocialMessages)
	assert.Equal(t, int64(9), out.Messaging.ActiveEnrollments)
	assert.Equal(t, int64(1), out.Messaging.PendingReminders)
}

func TestService_CachesResults(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewService(q, newMemoryCache(), time.Minute, "ILS", testutil.NewMockLogger())
	ctx := context.Background()

	first, err := svc.Messaging(ctx)
	require.NoError(t, err)
	calls := q.calls.Load()

	second, err := svc.Messaging(ctx)
	require.NoError(t, err)
	assert.Equal(t, calls, q.calls.Load(), "second read is served from cache")
	assert.Equal(t, first, second)
}

func TestService_WithoutCacheRecomputes(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewService(q, nil, time.Minute, "ILS", testutil.NewMockLogger())
	ctx := context.Background()

	_, err := svc.Messaging(ctx)
	require.NoError(t, err)
	_, err = svc.Messaging(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(6), q.calls.Load())
}

func TestService_QueryFailure(t *testing.T) {
	q := &fakeQuerier{err: errors.New("connection refused")}
	svc := NewService(q, nil, 0, "ILS", testutil.NewMockLogger())

	_, err := svc.Payments(context.Background())
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
}
