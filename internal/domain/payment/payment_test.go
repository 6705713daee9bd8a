package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
)

func ils(agorot int64) money.Money {
	return money.New(agorot, "ILS")
}

func validPayment(t *testing.T) *Payment {
	t.Helper()
	p, err := NewPayment(NewPaymentParams{
		ContactID: 1,
		Amount:    ils(120000),
		Method:    vo.PaymentMethodCreditCard,
		Gateway:   "PayPlus",
	})
	require.NoError(t, err)
	return p
}

func completedPayment(t *testing.T) *Payment {
	t.Helper()
	p := validPayment(t)
	changed, err := p.Complete("tx-1", time.Time{})
	require.NoError(t, err)
	require.True(t, changed)
	return p
}

func TestNewPayment(t *testing.T) {
	p := validPayment(t)
	assert.True(t, strings.HasPrefix(p.Reference(), "PAY-"))
	assert.Equal(t, "payplus", p.Gateway())
	assert.Equal(t, vo.PaymentStatusPending, p.Status())
	assert.Equal(t, 1, p.Installments())
	assert.True(t, p.RefundedAmount().IsZero())

	tests := []struct {
		name   string
		params NewPaymentParams
	}{
		{"missing contact", NewPaymentParams{Amount: ils(1), Method: vo.PaymentMethodCash, Gateway: "manual"}},
		{"zero amount", NewPaymentParams{ContactID: 1, Method: vo.PaymentMethodCash, Gateway: "manual"}},
		{"bad method", NewPaymentParams{ContactID: 1, Amount: ils(1), Method: "check", Gateway: "manual"}},
		{"no gateway", NewPaymentParams{ContactID: 1, Amount: ils(1), Method: vo.PaymentMethodCash}},
		{"too many installments", NewPaymentParams{ContactID: 1, Amount: ils(1), Method: vo.PaymentMethodCreditCard, Gateway: "tranzila", Installments: 37}},
		{"installments on cash", NewPaymentParams{ContactID: 1, Amount: ils(1), Method: vo.PaymentMethodCash, Gateway: "manual", Installments: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayment(tt.params)
			assert.Error(t, err)
		})
	}
}

func TestPayment_CompleteIsIdempotent(t *testing.T) {
	p := completedPayment(t)
	version := p.Version()

	changed, err := p.Complete("tx-2", time.Time{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "tx-1", p.TransactionID())
	assert.Equal(t, version, p.Version())
	assert.NotNil(t, p.PaidAt())
}

func TestPayment_GuardedTransitions(t *testing.T) {
	p := validPayment(t)
	require.NoError(t, p.Fail("card declined"))
	assert.Equal(t, "card declined", p.FailureReason())

	_, err := p.Complete("tx", time.Time{})
	assert.Error(t, err, "failed payment cannot complete")

	c := completedPayment(t)
	assert.Error(t, c.Cancel("too late"))
	assert.Error(t, c.Fail("late decline"))
}

func TestPayment_Refund(t *testing.T) {
	p := completedPayment(t)

	require.NoError(t, p.Refund(ils(20000)))
	assert.Equal(t, vo.PaymentStatusPartiallyRefunded, p.Status())
	assert.Equal(t, int64(100000), p.Refundable().Amount())

	assert.Error(t, p.Refund(ils(100001)), "exceeds refundable")
	assert.Error(t, p.Refund(ils(0)))
	assert.Error(t, p.Refund(money.New(100, "USD")))

	require.NoError(t, p.Refund(ils(100000)))
	assert.Equal(t, vo.PaymentStatusRefunded, p.Status())
	assert.True(t, p.IsFullyRefunded())
	assert.True(t, p.Refundable().IsZero())
	assert.NotNil(t, p.RefundedAt())

	assert.Error(t, p.Refund(ils(1)))
}

func TestPayment_RefundPending(t *testing.T) {
	p := validPayment(t)
	assert.Error(t, p.Refund(ils(100)))
}

func TestPayment_MatchesAmount(t *testing.T) {
	p := validPayment(t)
	assert.True(t, p.MatchesAmount(ils(120000)))
	assert.False(t, p.MatchesAmount(ils(119999)))
}
