package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/application/stats"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/db"
)

// settledStatuses are the payment states that once collected money.
var settledStatuses = []string{
	valueobjects.PaymentStatusCompleted.String(),
	valueobjects.PaymentStatusPartiallyRefunded.String(),
	valueobjects.PaymentStatusRefunded.String(),
}

// StatsRepository runs the dashboard aggregates straight against the tables.
// Money sums only include rows in the reporting currency.
type StatsRepository struct {
	db       *gorm.DB
	currency string
}

func NewStatsRepository(db *gorm.DB, currency string) *StatsRepository {
	return &StatsRepository{db: db, currency: money.Zero(currency).Currency()}
}

var _ stats.Querier = (*StatsRepository)(nil)

func (r *StatsRepository) groupCount(ctx context.Context, model any, column string) ([]stats.StatusCount, error) {
	var rows []struct {
		Key   string
		Count int64
	}
	if err := db.GetTxFromContext(ctx, r.db).
		Model(model).
		Select(column + " AS `key`, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", column, err)
	}
	out := make([]stats.StatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, stats.StatusCount{Key: row.Key, Count: row.Count})
	}
	return out, nil
}

func (r *StatsRepository) countWhere(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	if err := db.GetTxFromContext(ctx, r.db).Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

func (r *StatsRepository) ContactsByStatus(ctx context.Context) ([]stats.StatusCount, error) {
	return r.groupCount(ctx, &models.ContactModel{}, "status")
}

func (r *StatsRepository) CountContactsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.countWhere(ctx, &models.ContactModel{}, "created_at >= ?", since)
}

func (r *StatsRepository) LeadsByStage(ctx context.Context) ([]stats.StatusCount, error) {
	return r.groupCount(ctx, &models.LeadModel{}, "stage")
}

func (r *StatsRepository) SumDealAmount(ctx context.Context, status string, closedSince *time.Time) (int64, error) {
	var total int64
	query := db.GetTxFromContext(ctx, r.db).
		Model(&models.DealModel{}).
		Select("COALESCE(SUM(amount - discount), 0)").
		Where("status = ? AND currency = ?", status, r.currency)
	if closedSince != nil {
		query = query.Where("closed_at >= ?", *closedSince)
	}
	if err := query.Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum deals: %w", err)
	}
	return total, nil
}

func (r *StatsRepository) SumRevenue(ctx context.Context, since *time.Time) (int64, error) {
	var total int64
	query := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status IN ? AND currency = ?", settledStatuses, r.currency)
	if since != nil {
		query = query.Where("paid_at >= ?", *since)
	}
	if err := query.Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}

func (r *StatsRepository) SumRefunded(ctx context.Context) (int64, error) {
	var total int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(refunded_amount), 0)").
		Where("currency = ?", r.currency).
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum refunds: %w", err)
	}
	return total, nil
}

func (r *StatsRepository) CountPaymentsByStatus(ctx context.Context, status string) (int64, error) {
	return r.countWhere(ctx, &models.PaymentModel{}, "status = ?", status)
}

func (r *StatsRepository) PaidAmountsSince(ctx context.Context, since time.Time) ([]stats.PaidAmount, error) {
	var rows []struct {
		PaidAt time.Time
		Amount int64
	}
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Select("paid_at, amount").
		Where("status IN ? AND currency = ? AND paid_at >= ?", settledStatuses, r.currency, since).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load paid amounts: %w", err)
	}
	out := make([]stats.PaidAmount, 0, len(rows))
	for _, row := range rows {
		out = append(out, stats.PaidAmount{PaidAt: row.PaidAt, Amount: row.Amount})
	}
	return out, nil
}

func (r *StatsRepository) RevenueByGateway(ctx context.Context) ([]stats.GatewayRevenue, error) {
	var rows []struct {
		Gateway string
		Amount  int64
		Count   int64
	}
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Select("gateway, COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count").
		Where("status IN ? AND currency = ?", settledStatuses, r.currency).
		Group("gateway").
		Order("amount DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue by gateway: %w", err)
	}
	out := make([]stats.GatewayRevenue, 0, len(rows))
	for _, row := range rows {
		out = append(out, stats.GatewayRevenue{Gateway: row.Gateway, Amount: row.Amount, Count: row.Count})
	}
	return out, nil
}

func (r *StatsRepository) ActiveRecurring(ctx context.Context) ([]stats.RecurringAmount, error) {
	var rows []struct {
		Frequency string
		Amount    int64
	}
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.RecurringPaymentModel{}).
		Select("frequency, amount").
		Where("status = ? AND currency = ?", string(billing.RecurringStatusActive), r.currency).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load active recurring payments: %w", err)
	}
	out := make([]stats.RecurringAmount, 0, len(rows))
	for _, row := range rows {
		out = append(out, stats.RecurringAmount{Frequency: row.Frequency, Amount: row.Amount})
	}
	return out, nil
}

func (r *StatsRepository) CountSocialByStatus(ctx context.Context, status string) (int64, error) {
	return r.countWhere(ctx, &models.SocialMessageModel{}, "status = ?", status)
}

func (r *StatsRepository) CountEnrollmentsByStatus(ctx context.Context, status string) (int64, error) {
	return r.countWhere(ctx, &models.SequenceEnrollmentModel{}, "status = ?", status)
}

func (r *StatsRepository) CountRemindersByStatus(ctx context.Context, status string) (int64, error) {
	return r.countWhere(ctx, &models.ReminderModel{}, "status = ?", status)
}
