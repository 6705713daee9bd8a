package usecases

import (
	"context"
	"time"

	"github.com/kesher-io/kesher/internal/domain/payment"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

const expireBatchSize = 200

type ExpirePendingPaymentsUseCase struct {
	paymentRepo payment.PaymentRepository
	ttl         time.Duration
	logger      logger.Interface
}

func NewExpirePendingPaymentsUseCase(paymentRepo payment.PaymentRepository, ttl time.Duration, logger logger.Interface) *ExpirePendingPaymentsUseCase {
	return &ExpirePendingPaymentsUseCase{paymentRepo: paymentRepo, ttl: ttl, logger: logger}
}

// Execute cancels pending payments older than the TTL and returns how many it expired.
func (uc *ExpirePendingPaymentsUseCase) Execute(ctx context.Context) (int, error) {
	cutoff := biztime.NowUTC().Add(-uc.ttl)
	payments, err := uc.paymentRepo.ListPendingBefore(ctx, cutoff, expireBatchSize)
	if err != nil {
		uc.logger.Errorw("failed to list stale pending payments", "error", err)
		return 0, err
	}

	expired := 0
	for _, p := range payments {
		if err := p.Cancel("expired"); err != nil {
			uc.logger.Warnw("failed to expire payment", "error", err, "payment_id", p.ID())
			continue
		}
		if err := uc.paymentRepo.Update(ctx, p); err != nil {
			uc.logger.Errorw("failed to save expired payment", "error", err, "payment_id", p.ID())
			continue
		}
		expired++
	}

	if expired > 0 {
		uc.logger.Infow("expired pending payments", "count", expired, "cutoff", cutoff)
	}
	return expired, nil
}
