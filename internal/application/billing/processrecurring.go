package billing

import (
	"context"
	"sync"
	"time"

	paymentusecases "github.com/kesher-io/kesher/internal/application/payment/usecases"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

const (
	recurringBatchSize = 100
	defaultClaimLease  = 30 * time.Minute
)

// PaymentCreator creates and charges a payment.
type PaymentCreator interface {
	Execute(ctx context.Context, cmd paymentusecases.CreatePaymentCommand) (*paymentusecases.PaymentDTO, error)
}

type RecurringPolicy struct {
	RetryDelay  time.Duration
	MaxAttempts int
	// ClaimLease is how long a claimed payment stays hidden from other runs.
	ClaimLease time.Duration
}

func (p RecurringPolicy) claimLease() time.Duration {
	if p.ClaimLease <= 0 {
		return defaultClaimLease
	}
	return p.ClaimLease
}

type ProcessResult struct {
	Charged   int
	Failed    int
	Exhausted int
	// Skipped counts payments another run claimed first.
	Skipped int
	// Busy is set when a run was already in progress in this process.
	Busy bool
}

// ProcessDueRecurringUseCase charges every recurring payment whose attempt is due.
type ProcessDueRecurringUseCase struct {
	repo         billing.RecurringPaymentRepository
	reminderRepo billing.ReminderRepository
	payments     PaymentCreator
	policy       RecurringPolicy
	logger       logger.Interface

	running sync.Mutex
}

func NewProcessDueRecurringUseCase(
	repo billing.RecurringPaymentRepository,
	reminderRepo billing.ReminderRepository,
	payments PaymentCreator,
	policy RecurringPolicy,
	logger logger.Interface,
) *ProcessDueRecurringUseCase {
	return &ProcessDueRecurringUseCase{
		repo:         repo,
		reminderRepo: reminderRepo,
		payments:     payments,
		policy:       policy,
		logger:       logger,
	}
}

// Execute charges the due payments. Overlapping calls in one process return
// Busy, and each payment is claimed in the database before it is charged so
// runs in other processes cannot charge it twice.
func (uc *ProcessDueRecurringUseCase) Execute(ctx context.Context) (*ProcessResult, error) {
	if !uc.running.TryLock() {
		uc.logger.Infow("recurring billing run already in progress")
		return &ProcessResult{Busy: true}, nil
	}
	defer uc.running.Unlock()

	now := biztime.NowUTC()
	due, err := uc.repo.ListDue(ctx, now, recurringBatchSize)
	if err != nil {
		uc.logger.Errorw("failed to list due recurring payments", "error", err)
		return nil, err
	}

	result := &ProcessResult{}
	for _, r := range due {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if !r.IsDue(now) {
			continue
		}
		if !uc.claim(ctx, r, now, result) {
			continue
		}
		uc.charge(ctx, r, now, result)
	}

	if len(due) > 0 {
		uc.logger.Infow("recurring billing run finished",
			"due", len(due),
			"charged", result.Charged,
			"failed", result.Failed,
			"exhausted", result.Exhausted,
			"skipped", result.Skipped,
		)
	}
	return result, nil
}

func (uc *ProcessDueRecurringUseCase) claim(ctx context.Context, r *billing.RecurringPayment, now time.Time, result *ProcessResult) bool {
	if err := r.Claim(now, uc.policy.claimLease()); err != nil {
		return false
	}
	if err := uc.repo.Update(ctx, r); err != nil {
		if apperrors.IsConflictError(err) {
			uc.logger.Infow("recurring payment claimed by another run", "recurring_id", r.ID())
			result.Skipped++
			return false
		}
		uc.logger.Errorw("failed to claim recurring payment", "recurring_id", r.ID(), "error", err)
		return false
	}
	return true
}

func (uc *ProcessDueRecurringUseCase) charge(ctx context.Context, r *billing.RecurringPayment, now time.Time, result *ProcessResult) {
	log := uc.logger.With("recurring_id", r.ID(), "contact_id", r.ContactID())
	recurringID := r.ID()

	paid, err := uc.payments.Execute(ctx, paymentusecases.CreatePaymentCommand{
		ContactID:          r.ContactID(),
		RecurringPaymentID: &recurringID,
		Amount:             r.Amount().Decimal().StringFixed(2),
		Currency:           r.Amount().Currency(),
		Method:             "credit_card",
		Gateway:            r.Gateway(),
		Description:        r.Description(),
		CardToken:          r.CardToken(),
		CardExpiry:         r.CardExpiry(),
	})

	var reason string
	switch {
	case err != nil:
		reason = err.Error()
	case paid.Status != "completed":
		reason = "charge not approved"
		if paid.FailureReason != "" {
			reason = paid.FailureReason
		}
	}

	if reason == "" {
		r.RecordSuccess(now)
		result.Charged++
		log.Infow("recurring charge succeeded", "payment_id", paid.ID, "next_charge", r.NextChargeDate(), "status", r.Status())
	} else {
		exhausted := r.RecordFailure(reason, now, uc.policy.RetryDelay, uc.policy.MaxAttempts)
		result.Failed++
		log.Warnw("recurring charge failed", "reason", reason, "attempts", r.FailedAttempts(), "exhausted", exhausted)
		if exhausted {
			result.Exhausted++
			uc.queueFailureReminder(ctx, r, now)
		}
	}

	if err := uc.repo.Update(ctx, r); err != nil {
		log.Errorw("failed to save recurring payment", "error", err)
	}
}

func (uc *ProcessDueRecurringUseCase) queueFailureReminder(ctx context.Context, r *billing.RecurringPayment, now time.Time) {
	recurringID := r.ID()
	due := r.NextChargeDate()
	reminder, err := billing.NewReminder(billing.NewReminderParams{
		ContactID:          r.ContactID(),
		Kind:               billing.ReminderRecurringFailed,
		RecurringPaymentID: &recurringID,
		Amount:             r.Amount(),
		DueDate:            &due,
		RemindAt:           now,
	})
	if err != nil {
		uc.logger.Errorw("failed to build recurring failure reminder", "error", err, "recurring_id", recurringID)
		return
	}
	if err := uc.reminderRepo.Create(ctx, reminder); err != nil {
		uc.logger.Errorw("failed to queue recurring failure reminder", "error", err, "recurring_id", recurringID)
	}
}
