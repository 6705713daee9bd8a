package paymentgateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/config"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry(config.PaymentConfig{
		DefaultGateway: "PayPlus",
		PayPlus:        config.PayPlusConfig{Enabled: true},
	}, nil, logger.NewNopLogger())

	assert.Equal(t, []string{"manual", "payplus"}, r.Names())
	assert.Equal(t, PayPlusGatewayName, r.Default().Name())

	g, err := r.Get(" Manual ")
	require.NoError(t, err)
	assert.Equal(t, ManualGatewayName, g.Name())

	_, err = r.Get("tranzila")
	assert.True(t, apperrors.IsValidationError(err))
}

func TestRegistry_DefaultFallsBackToManual(t *testing.T) {
	r := NewRegistry(config.PaymentConfig{DefaultGateway: "tranzila"}, nil, logger.NewNopLogger())
	assert.Equal(t, ManualGatewayName, r.Default().Name())
}

func TestManualGateway(t *testing.T) {
	g := NewManualGateway()
	res, err := g.ProcessPayment(context.Background(), ChargeRequest{Reference: "PAY-1", Amount: money.New(100, "ILS")})
	require.NoError(t, err)
	assert.Equal(t, ChargeApproved, res.Status)
	assert.Equal(t, "MAN-PAY-1", res.TransactionID)

	refund, err := g.RefundPayment(context.Background(), RefundRequest{Reference: "PAY-1"})
	require.NoError(t, err)
	assert.True(t, refund.Approved)
	assert.NotEmpty(t, refund.RefundID)

	assert.ErrorIs(t, g.VerifyWebhook(nil, nil), ErrWebhookUnsupported)
}
