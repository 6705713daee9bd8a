package stats

import (
	"context"
	"time"
)

// StatusCount is one row of a GROUP BY status/stage query.
type StatusCount struct {
	Key   string
	Count int64
}

// GatewayRevenue is completed revenue collected through one gateway.
type GatewayRevenue struct {
	Gateway string
	Amount  int64
	Count   int64
}

// PaidAmount is a settled payment reduced to what the monthly series needs.
type PaidAmount struct {
	PaidAt time.Time
	Amount int64
}

// RecurringAmount is an active recurring payment reduced to its charge and cadence.
type RecurringAmount struct {
	Frequency string
	Amount    int64
}

// Querier runs the aggregate queries behind the admin dashboards.
type Querier interface {
	ContactsByStatus(ctx context.Context) ([]StatusCount, error)
	CountContactsSince(ctx context.Context, since time.Time) (int64, error)
	LeadsByStage(ctx context.Context) ([]StatusCount, error)
	SumDealAmount(ctx context.Context, status string, closedSince *time.Time) (int64, error)
	SumRevenue(ctx context.Context, since *time.Time) (int64, error)
	SumRefunded(ctx context.Context) (int64, error)
	CountPaymentsByStatus(ctx context.Context, status string) (int64, error)
	PaidAmountsSince(ctx context.Context, since time.Time) ([]PaidAmount, error)
	RevenueByGateway(ctx context.Context) ([]GatewayRevenue, error)
	ActiveRecurring(ctx context.Context) ([]RecurringAmount, error)
	CountSocialByStatus(ctx context.Context, status string) (int64, error)
	CountEnrollmentsByStatus(ctx context.Context, status string) (int64, error)
	CountRemindersByStatus(ctx context.Context, status string) (int64, error)
}

// Cache stores computed dashboards. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
