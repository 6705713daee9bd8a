// Package stats computes the aggregates shown on the admin dashboards.
package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/domain/lead"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	"github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

const (
	DefaultCacheTTL = 60 * time.Second
	cacheKeyPrefix  = "kesher:stats:"
	revenueMonths   = 12
)

type Service struct {
	q        Querier
	cache    Cache
	ttl      time.Duration
	currency string
	logger   logger.Interface
}

// NewService creates the dashboard service. cache may be nil.
func NewService(q Querier, cache Cache, ttl time.Duration, currency string, log logger.Interface) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{q: q, cache: cache, ttl: ttl, currency: currency, logger: log}
}

func cached[T any](ctx context.Context, s *Service, name string, compute func(context.Context) (*T, error)) (*T, error) {
	key := cacheKeyPrefix + name
	if s.cache != nil {
		var hit T
		ok, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			s.logger.Warnw("stats cache read failed", "key", key, "error", err)
		} else if ok {
			return &hit, nil
		}
	}

	out, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
			s.logger.Warnw("stats cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

func (s *Service) CRM(ctx context.Context) (*CRMStats, error) {
	return cached(ctx, s, "crm", s.computeCRM)
}

func (s *Service) Funnel(ctx context.Context) (*FunnelStats, error) {
	return cached(ctx, s, "funnel", s.computeFunnel)
}

func (s *Service) Payments(ctx context.Context) (*PaymentStats, error) {
	return cached(ctx, s, "payments", s.computePayments)
}

func (s *Service) Messaging(ctx context.Context) (*MessagingStats, error) {
	return cached(ctx, s, "messaging", s.computeMessaging)
}

// Overview loads all four dashboards concurrently.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	out := &Overview{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.CRM, err = s.CRM(gctx); return })
	g.Go(func() (err error) { out.Funnel, err = s.Funnel(gctx); return })
	g.Go(func() (err error) { out.Payments, err = s.Payments(gctx); return })
	g.Go(func() (err error) { out.Messaging, err = s.Messaging(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) money(amount int64) commondto.Money {
	return commondto.FromMoney(money.New(amount, s.currency))
}

func toMap(rows []StatusCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out
}

func (s *Service) computeCRM(ctx context.Context) (*CRMStats, error) {
	monthStart := biztime.StartOfMonthUTC(biztime.NowUTC())
	var (
		byStatus []StatusCount
		byStage  []StatusCount
		newCount int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { byStatus, err = s.q.ContactsByStatus(gctx); return })
	g.Go(func() (err error) { byStage, err = s.q.LeadsByStage(gctx); return })
	g.Go(func() (err error) { newCount, err = s.q.CountContactsSince(gctx, monthStart); return })
	if err := g.Wait(); err != nil {
		s.logger.Errorw("failed to compute crm stats", "error", err)
		return nil, errors.NewInternalError("failed to compute crm stats")
	}

	res := &CRMStats{
		ContactsByStatus:     toMap(byStatus),
		NewContactsThisMonth: newCount,
		LeadsByStage:         toMap(byStage),
	}
	for _, st := range []contact.Status{contact.StatusLead, contact.StatusCustomer, contact.StatusInactive} {
		if _, ok := res.ContactsByStatus[string(st)]; !ok {
			res.ContactsByStatus[string(st)] = 0
		}
	}
	for _, n := range res.ContactsByStatus {
		res.TotalContacts += n
	}
	return res, nil
}

func (s *Service) computeFunnel(ctx context.Context) (*FunnelStats, error) {
	monthStart := biztime.StartOfMonthUTC(biztime.NowUTC())
	var (
		byStage   []StatusCount
		openValue int64
		wonValue  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { byStage, err = s.q.LeadsByStage(gctx); return })
	g.Go(func() (err error) { openValue, err = s.q.SumDealAmount(gctx, string(deal.StatusOpen), nil); return })
	g.Go(func() (err error) {
		wonValue, err = s.q.SumDealAmount(gctx, string(deal.StatusWon), &monthStart)
		return
	})
	if err := g.Wait(); err != nil {
		s.logger.Errorw("failed to compute funnel stats", "error", err)
		return nil, errors.NewInternalError("failed to compute funnel stats")
	}

	stages := toMap(byStage)
	for _, st := range lead.FunnelStages {
		if _, ok := stages[string(st)]; !ok {
			stages[string(st)] = 0
		}
	}
	res := &FunnelStats{
		LeadsByStage:      stages,
		Won:               stages[string(lead.StageWon)],
		Lost:              stages[string(lead.StageLost)],
		OpenDealValue:     s.money(openValue),
		WonValueThisMonth: s.money(wonValue),
	}
	for st, n := range stages {
		if lead.Stage(st).IsOpen() {
			res.OpenLeads += n
		}
	}
	res.ConversionRate = ConversionRate(res.Won, res.Lost)
	return res, nil
}

// ConversionRate is won / (won + lost) rounded to four places, or 0 with no closed leads.
func ConversionRate(won, lost int64) float64 {
	closed := won + lost
	if closed == 0 {
		return 0
	}
	rate, _ := decimal.NewFromInt(won).DivRound(decimal.NewFromInt(closed), 4).Float64()
	return rate
}

func (s *Service) computePayments(ctx context.Context) (*PaymentStats, error) {
	now := biztime.NowUTC()
	monthStart := biztime.StartOfMonthUTC(now)
	seriesStart := biztime.AddMonthsUTC(now, -(revenueMonths - 1))

	var (
		monthRevenue int64
		totalRevenue int64
		refunded     int64
		pending      int64
		paid         []PaidAmount
		byGateway    []GatewayRevenue
		recurring    []RecurringAmount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { monthRevenue, err = s.q.SumRevenue(gctx, &monthStart); return })
	g.Go(func() (err error) { totalRevenue, err = s.q.SumRevenue(gctx, nil); return })
	g.Go(func() (err error) { refunded, err = s.q.SumRefunded(gctx); return })
	g.Go(func() (err error) {
		pending, err = s.q.CountPaymentsByStatus(gctx, valueobjects.PaymentStatusPending.String())
		return
	})
	g.Go(func() (err error) { paid, err = s.q.PaidAmountsSince(gctx, seriesStart); return })
	g.Go(func() (err error) { byGateway, err = s.q.RevenueByGateway(gctx); return })
	g.Go(func() (err error) { recurring, err = s.q.ActiveRecurring(gctx); return })
	if err := g.Wait(); err != nil {
		s.logger.Errorw("failed to compute payment stats", "error", err)
		return nil, errors.NewInternalError("failed to compute payment stats")
	}

	res := &PaymentStats{
		RevenueThisMonth: s.money(monthRevenue),
		RevenueTotal:     s.money(totalRevenue),
		RefundedTotal:    s.money(refunded),
		PendingCount:     pending,
		ActiveRecurring:  int64(len(recurring)),
	}

	for _, m := range MonthlySeries(paid, now, revenueMonths) {
		res.MonthlyRevenue = append(res.MonthlyRevenue, MonthlyRevenue{Month: m.Month, Amount: s.money(m.Amount)})
	}
	for _, gr := range byGateway {
		res.RevenueByGateway = append(res.RevenueByGateway, GatewayRevenueDTO{
			Gateway: gr.Gateway,
			Amount:  s.money(gr.Amount),
			Count:   gr.Count,
		})
	}
	res.MonthlyRecurringRevenue = commondto.FromMoney(MonthlyRecurringRevenue(recurring, s.currency))
	return res, nil
}

// MonthBucket is one month of the revenue series, keyed YYYY-MM in the business timezone.
type MonthBucket struct {
	Month  string
	Amount int64
}

// MonthlySeries buckets paid amounts into the n business months ending with the one containing now.
// Months without payments are present with a zero amount.
func MonthlySeries(paid []PaidAmount, now time.Time, n int) []MonthBucket {
	buckets := make([]MonthBucket, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := biztime.MonthKey(biztime.AddMonthsUTC(now, i-(n-1)))
		buckets[i] = MonthBucket{Month: key}
		index[key] = i
	}
	for _, p := range paid {
		if i, ok := index[biztime.MonthKey(p.PaidAt)]; ok {
			buckets[i].Amount += p.Amount
		}
	}
	return buckets
}

// MonthlyRecurringRevenue normalises every active recurring charge to a monthly amount.
func MonthlyRecurringRevenue(rows []RecurringAmount, currency string) money.Money {
	total := decimal.Zero
	for _, r := range rows {
		amount := decimal.NewFromInt(r.Amount)
		switch billing.Frequency(r.Frequency) {
		case billing.FrequencyWeekly:
			amount = amount.Mul(decimal.NewFromInt(52)).Div(decimal.NewFromInt(12))
		case billing.FrequencyQuarterly:
			amount = amount.Div(decimal.NewFromInt(3))
		case billing.FrequencyYearly:
			amount = amount.Div(decimal.NewFromInt(12))
		}
		total = total.Add(amount)
	}
	return money.New(total.Round(0).IntPart(), currency)
}

func (s *Service) computeMessaging(ctx context.Context) (*MessagingStats, error) {
	res := &MessagingStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.UnreadSocialMessages, err = s.q.CountSocialByStatus(gctx, string(messaging.SocialUnread))
		return
	})
	g.Go(func() (err error) {
		res.ActiveEnrollments, err = s.q.CountEnrollmentsByStatus(gctx, string(messaging.EnrollmentActive))
		return
	})
	g.Go(func() (err error) {
		res.PendingReminders, err = s.q.CountRemindersByStatus(gctx, string(billing.ReminderStatusPending))
		return
	})
	if err := g.Wait(); err != nil {
		s.logger.Errorw("failed to compute messaging stats", "error", err)
		return nil, errors.NewInternalError("failed to compute messaging stats")
	}
	return res, nil
}
