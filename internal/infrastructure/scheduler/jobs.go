package scheduler

import (
	"context"
	"time"

	"github.com/kesher-io/kesher/internal/application/billing"
	"github.com/kesher-io/kesher/internal/application/messaging"
	"github.com/kesher-io/kesher/internal/shared/config"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

const (
	JobRecurringBilling    = "recurring-billing"
	JobReminders           = "reminders"
	JobSequences           = "sequences"
	JobPendingPaymentSweep = "pending-payment-sweep"
)

type RecurringProcessor interface {
	Execute(ctx context.Context) (*billing.ProcessResult, error)
}

type ReminderSender interface {
	Execute(ctx context.Context) (*billing.SendResult, error)
}

type SequenceProcessor interface {
	Execute(ctx context.Context) (*messaging.ProcessSequencesResult, error)
}

// RecurringBillingJob counts every attempted charge, failed ones included.
func RecurringBillingJob(p RecurringProcessor, log logger.Interface) BatchJob {
	return JobFunc(func(ctx context.Context) (int, error) {
		res, err := p.Execute(ctx)
		if err != nil {
			return 0, err
		}
		if res.Failed > 0 || res.Exhausted > 0 {
			log.Warnw("recurring charges failed",
				"failed", res.Failed,
				"exhausted", res.Exhausted,
			)
		}
		return res.Charged + res.Failed, nil
	})
}

func RemindersJob(p ReminderSender, log logger.Interface) BatchJob {
	return JobFunc(func(ctx context.Context) (int, error) {
		res, err := p.Execute(ctx)
		if err != nil {
			return 0, err
		}
		if res.Failed > 0 {
			log.Warnw("reminders failed", "failed", res.Failed)
		}
		return res.Sent, nil
	})
}

func SequencesJob(p SequenceProcessor, log logger.Interface) BatchJob {
	return JobFunc(func(ctx context.Context) (int, error) {
		res, err := p.Execute(ctx)
		if err != nil {
			return 0, err
		}
		if res.Failed > 0 {
			log.Warnw("sequence steps failed", "failed", res.Failed, "cancelled", res.Cancelled)
		}
		return res.Sent + res.Cancelled, nil
	})
}

// Jobs bundles the processors the server schedules.
type Jobs struct {
	Recurring      RecurringProcessor
	Reminders      ReminderSender
	Sequences      SequenceProcessor
	PendingPayment BatchJob
}

func minutesOr(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Minute
}

// NewFromConfig registers the jobs with their configured intervals. Nil
// processors are skipped.
func NewFromConfig(cfg config.SchedulerConfig, jobs Jobs, log logger.Interface) (*Scheduler, error) {
	s, err := NewScheduler(log)
	if err != nil {
		return nil, err
	}

	type entry struct {
		name     string
		interval time.Duration
		run      BatchJob
	}
	var entries []entry
	if jobs.Recurring != nil {
		entries = append(entries, entry{JobRecurringBilling, minutesOr(cfg.RecurringIntervalMins, 60), RecurringBillingJob(jobs.Recurring, s.logger)})
	}
	if jobs.Reminders != nil {
		entries = append(entries, entry{JobReminders, minutesOr(cfg.RemindersIntervalMins, 15), RemindersJob(jobs.Reminders, s.logger)})
	}
	if jobs.Sequences != nil {
		entries = append(entries, entry{JobSequences, minutesOr(cfg.SequencesIntervalMins, 5), SequencesJob(jobs.Sequences, s.logger)})
	}
	if jobs.PendingPayment != nil {
		entries = append(entries, entry{JobPendingPaymentSweep, minutesOr(cfg.PendingSweepIntervalMins, 30), jobs.PendingPayment})
	}

	for _, e := range entries {
		if err := s.Register(e.name, e.interval, e.run); err != nil {
			return nil, err
		}
	}
	return s, nil
}
