package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/billing"
	"github.com/kesher-io/kesher/internal/application/messaging"
	"github.com/kesher-io/kesher/internal/shared/config"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler(logger.NewNopLogger())
	require.NoError(t, err)
	return s
}

func TestScheduler_RunsUntilStopped(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Register("counter", 10*time.Millisecond, JobFunc(func(context.Context) (int, error) {
		runs.Add(1)
		return 1, nil
	})))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestScheduler_Register(t *testing.T) {
	s := newTestScheduler(t)
	noop := JobFunc(func(context.Context) (int, error) { return 0, nil })

	require.NoError(t, s.Register("a", time.Minute, noop))
	assert.Error(t, s.Register("a", time.Minute, noop))
	assert.Error(t, s.Register("b", 0, noop))
	assert.Equal(t, []string{"a"}, s.Jobs())
}

func TestScheduler_StopsWhenContextCancelled(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Register("counter", 10*time.Millisecond, JobFunc(func(context.Context) (int, error) {
		runs.Add(1)
		return 0, nil
	})))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.started
	}, time.Second, 5*time.Millisecond)
	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestScheduler_OverlappingRunsDoNotStack(t *testing.T) {
	s := newTestScheduler(t)

	var running, maxRunning atomic.Int32
	require.NoError(t, s.Register("slow", 5*time.Millisecond, JobFunc(func(context.Context) (int, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(25 * time.Millisecond)
		return 0, nil
	})))

	s.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestScheduler_SurvivesFailingJobs(t *testing.T) {
	s := newTestScheduler(t)

	var calls atomic.Int32
	require.NoError(t, s.Register("flaky", 10*time.Millisecond, JobFunc(func(context.Context) (int, error) {
		switch calls.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return 0, errors.New("database unavailable")
		}
		return 0, nil
	})))

	s.Start(context.Background())
	defer s.Stop()
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

type fakeRecurring struct{ res *billing.ProcessResult }

func (f fakeRecurring) Execute(context.Context) (*billing.ProcessResult, error) { return f.res, nil }

type fakeReminders struct{ err error }

func (f fakeReminders) Execute(context.Context) (*billing.SendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &billing.SendResult{Sent: 4, Failed: 1}, nil
}

type fakeSequences struct{}

func (fakeSequences) Execute(context.Context) (*messaging.ProcessSequencesResult, error) {
	return &messaging.ProcessSequencesResult{Sent: 2, Cancelled: 1}, nil
}

func TestJobAdapters(t *testing.T) {
	log := logger.NewNopLogger()
	ctx := context.Background()

	n, err := RecurringBillingJob(fakeRecurring{res: &billing.ProcessResult{Charged: 3, Failed: 2, Exhausted: 1}}, log).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = RemindersJob(fakeReminders{}, log).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = RemindersJob(fakeReminders{err: errors.New("smtp down")}, log).Execute(ctx)
	assert.Error(t, err)

	n, err = SequencesJob(fakeSequences{}, log).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNewFromConfig(t *testing.T) {
	s, err := NewFromConfig(config.SchedulerConfig{Enabled: true, RemindersIntervalMins: 1}, Jobs{
		Recurring: fakeRecurring{res: &billing.ProcessResult{}},
		Reminders: fakeReminders{},
		Sequences: fakeSequences{},
	}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{JobRecurringBilling, JobReminders, JobSequences}, s.Jobs())

	assert.Equal(t, 60*time.Minute, minutesOr(0, 60))
	assert.Equal(t, time.Minute, minutesOr(1, 15))
}
