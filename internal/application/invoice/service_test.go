package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/testutil"
	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

func newTestService() (*Service, *testutil.MockPaymentRepository, *testutil.MockTemplateSender) {
	payments := testutil.NewMockPaymentRepository()
	sender := &testutil.MockTemplateSender{}
	svc := NewService(testutil.NewMockInvoiceRepository(), payments, sender, decimal.NewFromInt(18), testutil.NewMockLogger())
	return svc, payments, sender
}

func storePayment(t *testing.T, repo *testutil.MockPaymentRepository, amount int64, complete bool) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(payment.NewPaymentParams{
		ContactID:   7,
		Description: "Wheel throwing, spring term",
		Amount:      money.New(amount, "ILS"),
		Method:      vo.PaymentMethodCreditCard,
		Gateway:     "tranzila",
	})
	require.NoError(t, err)
	if complete {
		_, err = p.Complete("T-1", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestGenerateForPayment(t *testing.T) {
	svc, payments, _ := newTestService()
	ctx := context.Background()
	p := storePayment(t, payments, 118000, true)

	inv, err := svc.GenerateForPayment(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", inv.Number)
	assert.Equal(t, int64(100000), inv.Subtotal.Amount)
	assert.Equal(t, int64(18000), inv.VAT.Amount)
	assert.Equal(t, "issued", inv.Status)

	again, err := svc.GenerateForPayment(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, inv.ID, again.ID, "one invoice per payment")

	second := storePayment(t, payments, 5000, true)
	next, err := svc.GenerateForPayment(ctx, second.ID())
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00002", next.Number)
}

func TestGenerateForPayment_RequiresCompleted(t *testing.T) {
	svc, payments, _ := newTestService()
	p := storePayment(t, payments, 1000, false)

	_, err := svc.GenerateForPayment(context.Background(), p.ID())
	assert.True(t, apperrors.IsConflictError(err))
}

func TestCreditAndCancel(t *testing.T) {
	svc, payments, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.CreditForPayment(ctx, 404), "payments without invoices are ignored")

	p := storePayment(t, payments, 1000, true)
	require.NoError(t, svc.IssueForPayment(ctx, p.ID()))
	require.NoError(t, svc.CreditForPayment(ctx, p.ID()))

	list, err := svc.List(ctx, ListQuery{Status: "credited"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	_, err = svc.Cancel(ctx, list.Items[0].ID)
	assert.True(t, apperrors.IsConflictError(err), "credited invoices stay credited")

	_, err = svc.List(ctx, ListQuery{Status: "paid"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestSend(t *testing.T) {
	svc, payments, sender := newTestService()
	ctx := context.Background()
	p := storePayment(t, payments, 11800, true)
	inv, err := svc.GenerateForPayment(ctx, p.ID())
	require.NoError(t, err)

	require.NoError(t, svc.Send(ctx, inv.ID))
	require.Len(t, sender.Sent, 1)
	assert.Equal(t, InvoiceTemplateName, sender.Sent[0].Template)
	assert.Equal(t, uint(7), sender.Sent[0].ContactID)
	assert.Equal(t, "INV-2026-00001", sender.Sent[0].Vars["InvoiceNumber"])
	assert.Equal(t, "118.00 ILS", sender.Sent[0].Vars["Total"])

	_, err = svc.Cancel(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, apperrors.IsConflictError(svc.Send(ctx, inv.ID)))
}
