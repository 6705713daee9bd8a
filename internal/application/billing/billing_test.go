package billing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentusecases "github.com/kesher-io/kesher/internal/application/payment/usecases"
	"github.com/kesher-io/kesher/internal/application/testutil"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

func seedContact(t *testing.T, repo *testutil.MockContactRepository) uint {
	t.Helper()
	c, err := contact.NewContact("Yael", "Bar", "yael@example.com", "", "import")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), c))
	return c.ID()
}

func TestPlanService_CreateQueuesReminders(t *testing.T) {
	contacts := testutil.NewMockContactRepository()
	plans := testutil.NewMockPaymentPlanRepository()
	reminders := testutil.NewMockReminderRepository()
	svc := NewPlanService(plans, reminders, contacts, &testutil.TxRunner{}, "ILS", 3, testutil.NewMockLogger())
	ctx := context.Background()
	contactID := seedContact(t, contacts)

	start := biztime.NowUTC().AddDate(0, 1, 0).Format(time.DateOnly)
	plan, err := svc.Create(ctx, CreatePlanCommand{
		ContactID:        contactID,
		Description:      "Glazing workshop",
		Total:            "1000",
		InstallmentCount: 3,
		Frequency:        "monthly",
		StartDate:        start,
	})
	require.NoError(t, err)
	require.Len(t, plan.Installments, 3)
	assert.Equal(t, int64(33334), plan.Installments[0].Amount.Amount)
	assert.Equal(t, int64(33333), plan.Installments[2].Amount.Amount)

	all := reminders.All()
	require.Len(t, all, 3)
	for i, r := range all {
		assert.Equal(t, billing.ReminderInstallmentDue, r.Kind())
		assert.Equal(t, plan.Installments[i].ID, *r.InstallmentID())
		assert.True(t, plan.Installments[i].DueDate.AddDate(0, 0, -3).Equal(r.RemindAt()))
	}

	cancelled, err := svc.Cancel(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	for _, r := range reminders.All() {
		assert.Equal(t, billing.ReminderStatusCancelled, r.Status())
	}
}

func TestPlanService_Validation(t *testing.T) {
	contacts := testutil.NewMockContactRepository()
	svc := NewPlanService(testutil.NewMockPaymentPlanRepository(), testutil.NewMockReminderRepository(), contacts, &testutil.TxRunner{}, "ILS", 3, testutil.NewMockLogger())
	ctx := context.Background()
	contactID := seedContact(t, contacts)

	_, err := svc.Create(ctx, CreatePlanCommand{ContactID: contactID, Total: "100", InstallmentCount: 1, Frequency: "monthly", StartDate: "2026-05-01"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.Create(ctx, CreatePlanCommand{ContactID: contactID, Total: "100", InstallmentCount: 2, Frequency: "yearly", StartDate: "2026-05-01"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.Create(ctx, CreatePlanCommand{ContactID: contactID, Total: "100", InstallmentCount: 2, Frequency: "monthly", StartDate: "01/05/2026"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.Create(ctx, CreatePlanCommand{ContactID: 42, Total: "100", InstallmentCount: 2, Frequency: "monthly", StartDate: "2026-05-01"})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestRecurringService_Lifecycle(t *testing.T) {
	contacts := testutil.NewMockContactRepository()
	svc := NewRecurringService(testutil.NewMockRecurringPaymentRepository(), contacts, "ILS", "tranzila", testutil.NewMockLogger())
	ctx := context.Background()
	contactID := seedContact(t, contacts)

	r, err := svc.Create(ctx, CreateRecurringCommand{
		ContactID: contactID,
		Amount:    "149.90",
		Frequency: "monthly",
		StartDate: "2026-01-31",
		CardToken: "tok_4580123412341234",
	})
	require.NoError(t, err)
	assert.Equal(t, "tranzila", r.Gateway)
	assert.Equal(t, "1234", r.CardLast4)
	assert.Equal(t, "active", r.Status)

	paused, err := svc.Pause(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "paused", paused.Status)

	_, err = svc.Pause(ctx, r.ID)
	assert.True(t, apperrors.IsConflictError(err))

	resumed, err := svc.Resume(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resumed.Status)

	updated, err := svc.UpdateAmount(ctx, r.ID, "199")
	require.NoError(t, err)
	assert.Equal(t, int64(19900), updated.Amount.Amount)

	_, err = svc.UpdateCard(ctx, r.ID, " ", "")
	assert.True(t, apperrors.IsValidationError(err))

	cancelled, err := svc.Cancel(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = svc.Create(ctx, CreateRecurringCommand{ContactID: contactID, Amount: "10", Frequency: "monthly", StartDate: "2026-01-01"})
	assert.True(t, apperrors.IsValidationError(err), "card token is required")
}

type stubCreator struct {
	results []*paymentusecases.PaymentDTO
	errs    []error
	calls   []paymentusecases.CreatePaymentCommand
}

func (s *stubCreator) Execute(_ context.Context, cmd paymentusecases.CreatePaymentCommand) (*paymentusecases.PaymentDTO, error) {
	i := len(s.calls)
	s.calls = append(s.calls, cmd)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return nil, err
	}
	return s.results[i], nil
}

func newDueRecurring(t *testing.T, repo *testutil.MockRecurringPaymentRepository) *billing.RecurringPayment {
	t.Helper()
	r, err := billing.NewRecurringPayment(billing.NewRecurringPaymentParams{
		ContactID: 3,
		Amount:    moneyILS(t, "120"),
		Frequency: billing.FrequencyMonthly,
		StartDate: biztime.NowUTC().Add(-time.Hour),
		Gateway:   "payplus",
		CardToken: "tok-1",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}

func TestProcessDueRecurring_Success(t *testing.T) {
	repo := testutil.NewMockRecurringPaymentRepository()
	r := newDueRecurring(t, repo)
	creator := &stubCreator{results: []*paymentusecases.PaymentDTO{{ID: 9, Status: "completed"}}}
	uc := NewProcessDueRecurringUseCase(repo, testutil.NewMockReminderRepository(), creator,
		RecurringPolicy{RetryDelay: 24 * time.Hour, MaxAttempts: 3}, testutil.NewMockLogger())

	res, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Charged)

	require.Len(t, creator.calls, 1)
	assert.Equal(t, "120.00", creator.calls[0].Amount)
	assert.Equal(t, "tok-1", creator.calls[0].CardToken)
	assert.Equal(t, r.ID(), *creator.calls[0].RecurringPaymentID)

	stored, _ := repo.GetByID(context.Background(), r.ID())
	assert.Equal(t, 1, stored.ChargeCount())
	assert.True(t, stored.NextChargeDate().After(biztime.NowUTC()))

	res, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Charged, "nothing due until the next date")
}

func TestProcessDueRecurring_RetriesThenFails(t *testing.T) {
	repo := testutil.NewMockRecurringPaymentRepository()
	reminders := testutil.NewMockReminderRepository()
	r := newDueRecurring(t, repo)
	creator := &stubCreator{
		results: []*paymentusecases.PaymentDTO{nil, {ID: 2, Status: "failed", FailureReason: "card expired"}},
		errs:    []error{errors.New("gateway down")},
	}
	// Zero retry delay keeps the payment due on the next run.
	uc := NewProcessDueRecurringUseCase(repo, reminders, creator,
		RecurringPolicy{RetryDelay: 0, MaxAttempts: 2}, testutil.NewMockLogger())
	ctx := context.Background()

	res, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Zero(t, res.Exhausted)
	stored, _ := repo.GetByID(ctx, r.ID())
	assert.Equal(t, billing.RecurringStatusActive, stored.Status())
	assert.NotNil(t, stored.RetryAt())

	res, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Exhausted)
	assert.Equal(t, billing.RecurringStatusFailed, stored.Status())
	assert.Equal(t, "card expired", stored.LastFailureReason())

	all := reminders.All()
	require.Len(t, all, 1)
	assert.Equal(t, billing.ReminderRecurringFailed, all[0].Kind())
}

func TestSendDueReminders(t *testing.T) {
	repo := testutil.NewMockReminderRepository()
	sender := &testutil.MockTemplateSender{}
	uc := NewSendDueRemindersUseCase(repo, sender, testutil.NewMockLogger())
	ctx := context.Background()

	due := biztime.NowUTC().AddDate(0, 0, 2)
	r, err := billing.NewReminder(billing.NewReminderParams{
		ContactID: 5,
		Kind:      billing.ReminderInstallmentDue,
		Amount:    moneyILS(t, "333.34"),
		DueDate:   &due,
		RemindAt:  biztime.NowUTC().Add(-time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, r))

	later, err := billing.NewReminder(billing.NewReminderParams{
		ContactID: 5,
		Kind:      billing.ReminderPaymentPending,
		RemindAt:  biztime.NowUTC().Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, later))

	res, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "reminder_installment_due", sender.Sent[0].Template)
	assert.Equal(t, "333.34 ILS", sender.Sent[0].Vars["Amount"])
	assert.Equal(t, billing.ReminderStatusSent, r.Status())
	assert.Equal(t, billing.ReminderStatusPending, later.Status())
}

func TestSendDueReminders_GivesUpAfterMaxAttempts(t *testing.T) {
	repo := testutil.NewMockReminderRepository()
	sender := &testutil.MockTemplateSender{Err: errors.New("smtp unavailable")}
	uc := NewSendDueRemindersUseCase(repo, sender, testutil.NewMockLogger())
	ctx := context.Background()

	r, err := billing.NewReminder(billing.NewReminderParams{
		ContactID: 5,
		Kind:      billing.ReminderPaymentPending,
		RemindAt:  biztime.NowUTC().Add(-time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, r))

	for i := 0; i < billing.MaxReminderAttempts; i++ {
		_, err := uc.Execute(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, billing.ReminderStatusFailed, r.Status())
	assert.Equal(t, "smtp unavailable", r.LastError())

	res, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Failed+res.Sent)

	svc := NewReminderService(repo, testutil.NewMockLogger())
	_, err = svc.Cancel(ctx, r.ID())
	assert.True(t, apperrors.IsConflictError(err))
}

func TestProcessDueRecurring_ResumedPaymentIsNotBackCharged(t *testing.T) {
	repo := testutil.NewMockRecurringPaymentRepository()
	ctx := context.Background()
	r, err := billing.NewRecurringPayment(billing.NewRecurringPaymentParams{
		ContactID: 3,
		Amount:    moneyILS(t, "120"),
		Frequency: billing.FrequencyMonthly,
		StartDate: biztime.NowUTC().AddDate(0, -6, 0),
		Gateway:   "payplus",
		CardToken: "tok-1",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, r))

	svc := NewRecurringService(repo, testutil.NewMockContactRepository(), "ILS", "payplus", testutil.NewMockLogger())
	_, err = svc.Pause(ctx, r.ID())
	require.NoError(t, err)
	_, err = svc.Resume(ctx, r.ID())
	require.NoError(t, err)

	stored, _ := repo.GetByID(ctx, r.ID())
	assert.False(t, stored.NextChargeDate().Before(biztime.NowUTC().Add(-time.Minute)))

	creator := &stubCreator{results: []*paymentusecases.PaymentDTO{{ID: 1, Status: "completed"}}}
	uc := NewProcessDueRecurringUseCase(repo, testutil.NewMockReminderRepository(), creator,
		RecurringPolicy{RetryDelay: time.Hour, MaxAttempts: 3}, testutil.NewMockLogger())
	for i := 0; i < 3; i++ {
		_, err := uc.Execute(ctx)
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, len(creator.calls), 1, "missed periods are skipped, not charged one by one")
}

type blockingCreator struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingCreator) Execute(_ context.Context, _ paymentusecases.CreatePaymentCommand) (*paymentusecases.PaymentDTO, error) {
	b.calls.Add(1)
	b.started <- struct{}{}
	<-b.release
	return &paymentusecases.PaymentDTO{ID: 1, Status: "completed"}, nil
}

func TestProcessDueRecurring_OverlappingRunsChargeOnce(t *testing.T) {
	repo := testutil.NewMockRecurringPaymentRepository()
	newDueRecurring(t, repo)
	creator := &blockingCreator{started: make(chan struct{}, 1), release: make(chan struct{})}
	uc := NewProcessDueRecurringUseCase(repo, testutil.NewMockReminderRepository(), creator,
		RecurringPolicy{RetryDelay: time.Hour, MaxAttempts: 3}, testutil.NewMockLogger())
	ctx := context.Background()

	done := make(chan *ProcessResult)
	go func() {
		res, _ := uc.Execute(ctx)
		done <- res
	}()
	<-creator.started

	busy, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.True(t, busy.Busy)

	close(creator.release)
	first := <-done
	assert.Equal(t, 1, first.Charged)
	assert.Equal(t, int32(1), creator.calls.Load())
}

// racingRepo answers the claim as if another process had saved the row first.
type racingRepo struct {
	*testutil.MockRecurringPaymentRepository
	conflicts int
}

func (r *racingRepo) Update(ctx context.Context, rp *billing.RecurringPayment) error {
	if r.conflicts > 0 {
		r.conflicts--
		return apperrors.NewConflictError("recurring payment was modified concurrently")
	}
	return r.MockRecurringPaymentRepository.Update(ctx, rp)
}

func TestProcessDueRecurring_SkipsPaymentClaimedElsewhere(t *testing.T) {
	mock := testutil.NewMockRecurringPaymentRepository()
	newDueRecurring(t, mock)
	repo := &racingRepo{MockRecurringPaymentRepository: mock, conflicts: 1}
	creator := &stubCreator{results: []*paymentusecases.PaymentDTO{{ID: 1, Status: "completed"}}}
	uc := NewProcessDueRecurringUseCase(repo, testutil.NewMockReminderRepository(), creator,
		RecurringPolicy{RetryDelay: time.Hour, MaxAttempts: 3}, testutil.NewMockLogger())

	res, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Charged)
	assert.Empty(t, creator.calls, "no charge without a claim")
}
