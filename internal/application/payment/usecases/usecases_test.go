package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/payment/paymentgateway"
	"github.com/kesher-io/kesher/internal/application/testutil"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type stubResolver struct {
	gateways map[string]paymentgateway.PaymentGateway
	def      string
}

func (r *stubResolver) Get(name string) (paymentgateway.PaymentGateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, apperrors.NewValidationError("unknown payment gateway", name)
	}
	return g, nil
}

func (r *stubResolver) Default() paymentgateway.PaymentGateway { return r.gateways[r.def] }

type promoter struct {
	repo contact.Repository
}

func (p *promoter) MarkCustomer(ctx context.Context, id uint) error {
	c, err := p.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.MarkCustomer() {
		return p.repo.Update(ctx, c)
	}
	return nil
}

type fixture struct {
	payments  *testutil.MockPaymentRepository
	events    *testutil.MockWebhookEventRepository
	contacts  *testutil.MockContactRepository
	deals     *testutil.MockDealRepository
	plans     *testutil.MockPaymentPlanRepository
	reminders *testutil.MockReminderRepository
	invoices  *testutil.MockInvoiceIssuer
	trigger   *testutil.MockSequenceTrigger
	card      *testutil.MockGateway
	tx        *testutil.TxRunner

	settlement *Settlement
	create     *CreatePaymentUseCase
	refund     *RefundPaymentUseCase
	webhook    *HandleWebhookUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := testutil.NewMockLogger()
	f := &fixture{
		payments:  testutil.NewMockPaymentRepository(),
		events:    testutil.NewMockWebhookEventRepository(),
		contacts:  testutil.NewMockContactRepository(),
		deals:     testutil.NewMockDealRepository(),
		plans:     testutil.NewMockPaymentPlanRepository(),
		reminders: testutil.NewMockReminderRepository(),
		invoices:  &testutil.MockInvoiceIssuer{},
		trigger:   &testutil.MockSequenceTrigger{},
		card:      testutil.NewMockGateway("tranzila"),
		tx:        &testutil.TxRunner{},
	}
	resolver := &stubResolver{
		gateways: map[string]paymentgateway.PaymentGateway{
			paymentgateway.ManualGatewayName: paymentgateway.NewManualGateway(),
			"tranzila":                       f.card,
		},
		def: "tranzila",
	}

	f.settlement = NewSettlement(f.payments, f.deals, f.plans, f.reminders, &promoter{repo: f.contacts}, log)
	f.settlement.SetInvoiceIssuer(f.invoices, true)
	f.settlement.SetSequenceTrigger(f.trigger)

	f.create = NewCreatePaymentUseCase(f.payments, f.contacts, f.deals, f.plans, resolver, f.settlement, "ILS", "https://kesher.test/", log)
	f.refund = NewRefundPaymentUseCase(f.payments, resolver, f.settlement, log)
	f.webhook = NewHandleWebhookUseCase(f.payments, f.events, resolver, f.tx, f.settlement, log)
	return f
}

func (f *fixture) contact(t *testing.T) *contact.Contact {
	t.Helper()
	c, err := contact.NewContact("Dana", "Cohen", "dana@example.com", "", "website")
	require.NoError(t, err)
	require.NoError(t, f.contacts.Create(context.Background(), c))
	return c
}

func (f *fixture) deal(t *testing.T, contactID uint, amount int64) *deal.Deal {
	t.Helper()
	d, err := deal.NewDeal(deal.NewDealParams{
		ContactID: contactID,
		Title:     "Pottery course",
		Amount:    money.New(amount, "ILS"),
		Discount:  money.Zero("ILS"),
	})
	require.NoError(t, err)
	require.NoError(t, f.deals.Create(context.Background(), d))
	return d
}

func TestCreatePayment_CashCompletesAndSettlesDeal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.contact(t)
	d := f.deal(t, c.ID(), 120000)
	dealID := d.ID()

	dto, err := f.create.Execute(ctx, CreatePaymentCommand{
		ContactID: c.ID(),
		DealID:    &dealID,
		Method:    "cash",
		Gateway:   "tranzila",
	})
	require.NoError(t, err)

	assert.Equal(t, "completed", dto.Status)
	assert.Equal(t, paymentgateway.ManualGatewayName, dto.Gateway)
	assert.Equal(t, int64(120000), dto.Amount.Amount)
	assert.Empty(t, f.card.Charges, "offline payments never reach the card gateway")

	stored, err := f.deals.GetByID(ctx, dealID)
	require.NoError(t, err)
	assert.Equal(t, deal.StatusWon, stored.Status())

	promoted, err := f.contacts.GetByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, contact.StatusCustomer, promoted.Status())

	assert.Equal(t, []uint{dto.ID}, f.invoices.Issued)
	require.Len(t, f.trigger.Calls, 1)
	assert.Equal(t, messaging.TriggerPaymentCompleted, f.trigger.Calls[0].Trigger)
}

func TestCreatePayment_PartialPaymentKeepsDealOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.contact(t)
	d := f.deal(t, c.ID(), 100000)
	dealID := d.ID()

	_, err := f.create.Execute(ctx, CreatePaymentCommand{
		ContactID: c.ID(),
		DealID:    &dealID,
		Amount:    "400",
		Method:    "bank_transfer",
	})
	require.NoError(t, err)

	stored, _ := f.deals.GetByID(ctx, dealID)
	assert.Equal(t, deal.StatusOpen, stored.Status())

	rest, err := f.create.Execute(ctx, CreatePaymentCommand{
		ContactID: c.ID(),
		DealID:    &dealID,
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60000), rest.Amount.Amount, "empty amount takes the deal balance")

	stored, _ = f.deals.GetByID(ctx, dealID)
	assert.Equal(t, deal.StatusWon, stored.Status())

	_, err = f.create.Execute(ctx, CreatePaymentCommand{ContactID: c.ID(), DealID: &dealID, Method: "cash"})
	assert.True(t, apperrors.IsConflictError(err))
}

func TestCreatePayment_CardPendingStoresRedirect(t *testing.T) {
	f := newFixture(t)
	c := f.contact(t)
	f.card.ChargeResult = &paymentgateway.ChargeResult{
		Status:      paymentgateway.ChargePending,
		RedirectURL: "https://pay.example/page",
	}

	dto, err := f.create.Execute(context.Background(), CreatePaymentCommand{
		ContactID: c.ID(),
		Amount:    "99.90",
		Method:    "credit_card",
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, "https://pay.example/page", dto.RedirectURL)
	require.Len(t, f.card.Charges, 1)
	assert.Equal(t, "https://kesher.test/api/webhooks/payments/tranzila", f.card.Charges[0].NotifyURL)
	assert.Equal(t, "dana@example.com", f.card.Charges[0].Customer.Email)
	assert.Empty(t, f.invoices.Issued)
}

func TestCreatePayment_GatewayErrorFailsPayment(t *testing.T) {
	f := newFixture(t)
	c := f.contact(t)
	f.card.ChargeErr = errors.New("connection reset")

	_, err := f.create.Execute(context.Background(), CreatePaymentCommand{
		ContactID: c.ID(),
		Amount:    "50",
		Method:    "credit_card",
	})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeGateway, appErr.Type)

	stored, _, err := f.payments.List(context.Background(), payment.Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, vo.PaymentStatusFailed, stored[0].Status())
}

func TestCreatePayment_Validation(t *testing.T) {
	f := newFixture(t)
	c := f.contact(t)
	ctx := context.Background()

	_, err := f.create.Execute(ctx, CreatePaymentCommand{ContactID: c.ID(), Amount: "10", Method: "barter"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.create.Execute(ctx, CreatePaymentCommand{ContactID: c.ID(), Amount: "ten", Method: "cash"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.create.Execute(ctx, CreatePaymentCommand{ContactID: c.ID(), Method: "cash"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.create.Execute(ctx, CreatePaymentCommand{ContactID: 999, Amount: "10", Method: "cash"})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestCreatePayment_InstallmentSettlesPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.contact(t)

	plan, err := billing.NewPaymentPlan(billing.NewPaymentPlanParams{
		ContactID:        c.ID(),
		Description:      "Ceramics year",
		Total:            money.New(90000, "ILS"),
		InstallmentCount: 3,
		Frequency:        billing.FrequencyMonthly,
		StartDate:        time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, f.plans.Create(ctx, plan))
	first := plan.Installments()[0]

	reminder, err := billing.NewReminder(billing.NewReminderParams{
		ContactID:     c.ID(),
		Kind:          billing.ReminderInstallmentDue,
		PlanID:        ptr(plan.ID()),
		InstallmentID: ptr(first.ID),
		Amount:        first.Amount,
		DueDate:       &first.DueDate,
		RemindAt:      first.DueDate.AddDate(0, 0, -3),
	})
	require.NoError(t, err)
	require.NoError(t, f.reminders.Create(ctx, reminder))

	dto, err := f.create.Execute(ctx, CreatePaymentCommand{
		ContactID:     c.ID(),
		InstallmentID: &first.ID,
		Method:        "bit",
		Gateway:       paymentgateway.ManualGatewayName,
	})
	require.NoError(t, err)
	assert.Equal(t, first.Amount.Amount(), dto.Amount.Amount)

	stored, err := f.plans.GetByID(ctx, plan.ID())
	require.NoError(t, err)
	inst, _ := stored.Installment(first.ID)
	assert.Equal(t, billing.InstallmentStatusPaid, inst.Status)
	assert.Equal(t, billing.PlanStatusActive, stored.Status())

	all := f.reminders.All()
	require.Len(t, all, 1)
	assert.Equal(t, billing.ReminderStatusCancelled, all[0].Status())

	_, err = f.create.Execute(ctx, CreatePaymentCommand{ContactID: c.ID(), InstallmentID: &first.ID, Method: "cash"})
	assert.True(t, apperrors.IsConflictError(err))
}

func TestRefundPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.contact(t)

	paid, err := f.create.Execute(ctx, CreatePaymentCommand{ContactID: c.ID(), Amount: "300", Method: "credit_card"})
	require.NoError(t, err)
	require.Equal(t, "completed", paid.Status)

	partial, err := f.refund.Execute(ctx, RefundPaymentCommand{PaymentID: paid.ID, Amount: "100"})
	require.NoError(t, err)
	assert.Equal(t, "partially_refunded", partial.Status)
	assert.Empty(t, f.invoices.Credited)

	_, err = f.refund.Execute(ctx, RefundPaymentCommand{PaymentID: paid.ID, Amount: "500"})
	assert.True(t, apperrors.IsValidationError(err))

	full, err := f.refund.Execute(ctx, RefundPaymentCommand{PaymentID: paid.ID})
	require.NoError(t, err)
	assert.Equal(t, "refunded", full.Status)
	assert.Equal(t, int64(30000), full.RefundedAmount.Amount)
	assert.Equal(t, []uint{paid.ID}, f.invoices.Credited)

	_, err = f.refund.Execute(ctx, RefundPaymentCommand{PaymentID: paid.ID})
	assert.True(t, apperrors.IsConflictError(err))
}

func TestRefundPayment_Declined(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.contact(t)

	paid, err := f.create.Execute(ctx, CreatePaymentCommand{ContactID: c.ID(), Amount: "300", Method: "credit_card"})
	require.NoError(t, err)

	f.card.RefundResult = &paymentgateway.RefundResult{Approved: false, Message: "too late"}
	_, err = f.refund.Execute(ctx, RefundPaymentCommand{PaymentID: paid.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeGateway, apperrors.GetAppError(err).Type)

	stored, _ := f.payments.GetByID(ctx, paid.ID)
	assert.Equal(t, vo.PaymentStatusCompleted, stored.Status())
}

func (f *fixture) pendingCardPayment(t *testing.T) *PaymentDTO {
	t.Helper()
	c := f.contact(t)
	f.card.ChargeResult = &paymentgateway.ChargeResult{Status: paymentgateway.ChargePending, RedirectURL: "https://pay.example"}
	dto, err := f.create.Execute(context.Background(), CreatePaymentCommand{ContactID: c.ID(), Amount: "250", Method: "credit_card"})
	require.NoError(t, err)
	return dto
}

func TestHandleWebhook_PaidIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.pendingCardPayment(t)

	f.card.Event = &paymentgateway.WebhookEvent{
		EventID:       "evt-1",
		Reference:     pending.Reference,
		TransactionID: "T-77",
		Status:        paymentgateway.EventPaid,
		Amount:        money.New(25000, "ILS"),
	}
	cmd := WebhookCommand{Gateway: "tranzila", Header: http.Header{}, Body: []byte("payload")}

	res, err := f.webhook.Execute(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, "completed", res.Status)

	again, err := f.webhook.Execute(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, again.Duplicate)

	stored, _ := f.payments.GetByID(ctx, pending.ID)
	assert.Equal(t, vo.PaymentStatusCompleted, stored.Status())
	assert.Equal(t, "T-77", stored.TransactionID())
	assert.Len(t, f.invoices.Issued, 1, "effects run once")
	assert.Equal(t, 1, f.events.Count())
}

func TestHandleWebhook_AmountMismatchFails(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingCardPayment(t)
	f.card.Event = &paymentgateway.WebhookEvent{
		EventID:   "evt-2",
		Reference: pending.Reference,
		Status:    paymentgateway.EventPaid,
		Amount:    money.New(100, "ILS"),
	}

	res, err := f.webhook.Execute(context.Background(), WebhookCommand{Gateway: "tranzila"})
	require.NoError(t, err)
	assert.Equal(t, "failed", res.Status)
	assert.Empty(t, f.invoices.Issued)
}

func TestHandleWebhook_RefundEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.contact(t)
	paid, err := f.create.Execute(ctx, CreatePaymentCommand{ContactID: c.ID(), Amount: "80", Method: "credit_card"})
	require.NoError(t, err)

	f.card.Event = &paymentgateway.WebhookEvent{
		EventID:       "evt-r",
		TransactionID: paid.TransactionID,
		Status:        paymentgateway.EventRefunded,
		Amount:        money.New(999999, "ILS"),
	}
	res, err := f.webhook.Execute(ctx, WebhookCommand{Gateway: "tranzila"})
	require.NoError(t, err)
	assert.Equal(t, "refunded", res.Status)
	assert.Equal(t, []uint{paid.ID}, f.invoices.Credited)
}

func TestHandleWebhook_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.webhook.Execute(ctx, WebhookCommand{Gateway: "stripe"})
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = f.webhook.Execute(ctx, WebhookCommand{Gateway: paymentgateway.ManualGatewayName})
	assert.Equal(t, apperrors.ErrorTypeBadRequest, apperrors.GetAppError(err).Type)

	f.card.VerifyErr = paymentgateway.ErrInvalidSignature
	_, err = f.webhook.Execute(ctx, WebhookCommand{Gateway: "tranzila"})
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.GetAppError(err).Type)
	assert.Equal(t, 0, f.events.Count())
}

func TestHandleWebhook_UnconfirmedPaidLeavesPaymentPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.pendingCardPayment(t)
	f.card.Event = &paymentgateway.WebhookEvent{
		EventID:       "evt-forged",
		Reference:     pending.Reference,
		TransactionID: "T-1",
		Status:        paymentgateway.EventPaid,
		Amount:        money.New(25000, "ILS"),
	}
	f.card.ConfirmErr = fmt.Errorf("%w: response 004", paymentgateway.ErrNotConfirmed)

	_, err := f.webhook.Execute(ctx, WebhookCommand{Gateway: "tranzila"})
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.GetAppError(err).Type)
	assert.Equal(t, []string{"evt-forged"}, f.card.Confirmed)
	assert.Equal(t, 0, f.events.Count())

	stored, _ := f.payments.GetByID(ctx, pending.ID)
	assert.Equal(t, vo.PaymentStatusPending, stored.Status())
	assert.Empty(t, f.invoices.Issued)

	f.card.ConfirmErr = errors.New("connection reset")
	_, err = f.webhook.Execute(ctx, WebhookCommand{Gateway: "tranzila"})
	assert.Equal(t, apperrors.ErrorTypeGateway, apperrors.GetAppError(err).Type)
}

func TestHandleWebhook_PaidAfterCancelIsFlagged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.pendingCardPayment(t)

	stored, _ := f.payments.GetByID(ctx, pending.ID)
	require.NoError(t, stored.Cancel("customer changed their mind"))
	require.NoError(t, f.payments.Update(ctx, stored))

	f.card.Event = &paymentgateway.WebhookEvent{
		EventID:       "evt-late",
		Reference:     pending.Reference,
		TransactionID: "T-late",
		Status:        paymentgateway.EventPaid,
		Amount:        money.New(25000, "ILS"),
	}
	res, err := f.webhook.Execute(ctx, WebhookCommand{Gateway: "tranzila"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Status)

	stored, _ = f.payments.GetByID(ctx, pending.ID)
	assert.Equal(t, vo.PaymentStatusCancelled, stored.Status())
	flag, ok := stored.Metadata()[latePaymentMetadataKey].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "T-late", flag["transaction_id"])
	assert.Empty(t, f.invoices.Issued)
}

func TestHandleWebhook_UnknownPaymentIsRetried(t *testing.T) {
	f := newFixture(t)
	f.card.Event = &paymentgateway.WebhookEvent{
		EventID:   "evt-x",
		Reference: "PAY-MISSING",
		Status:    paymentgateway.EventPaid,
	}
	_, err := f.webhook.Execute(context.Background(), WebhookCommand{Gateway: "tranzila"})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestExpirePendingPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.pendingCardPayment(t)

	uc := NewExpirePendingPaymentsUseCase(f.payments, -time.Minute, testutil.NewMockLogger())
	n, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, _ := f.payments.GetByID(ctx, pending.ID)
	assert.Equal(t, vo.PaymentStatusCancelled, stored.Status())
	assert.Equal(t, "expired", stored.FailureReason())

	n, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCancelPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.pendingCardPayment(t)
	uc := NewCancelPaymentUseCase(f.payments, testutil.NewMockLogger())

	dto, err := uc.Execute(ctx, pending.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", dto.Status)

	_, err = uc.Execute(ctx, pending.ID, "again")
	assert.True(t, apperrors.IsConflictError(err))
}

func TestListPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.pendingCardPayment(t)
	_, err := f.create.Execute(ctx, CreatePaymentCommand{ContactID: pending.ContactID, Amount: "10", Method: "cash"})
	require.NoError(t, err)

	uc := NewListPaymentsUseCase(f.payments, testutil.NewMockLogger())
	res, err := uc.Execute(ctx, ListPaymentsQuery{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)

	_, err = uc.Execute(ctx, ListPaymentsQuery{Status: "lost"})
	assert.True(t, apperrors.IsValidationError(err))
}

func ptr[T any](v T) *T { return &v }
