package paymentgateway

import (
	"context"
	"net/http"

	"github.com/kesher-io/kesher/internal/shared/id"
)

const ManualGatewayName = "manual"

// ManualGateway records payments taken outside any provider: cash, bank transfer or Bit.
type ManualGateway struct{}

func NewManualGateway() *ManualGateway {
	return &ManualGateway{}
}

func (g *ManualGateway) Name() string { return ManualGatewayName }

func (g *ManualGateway) ProcessPayment(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	return &ChargeResult{
		Status:        ChargeApproved,
		TransactionID: "MAN-" + req.Reference,
	}, nil
}

func (g *ManualGateway) RefundPayment(_ context.Context, req RefundRequest) (*RefundResult, error) {
	refundID, err := id.GenerateWithPrefix("RFD", id.DefaultLength)
	if err != nil {
		return nil, err
	}
	return &RefundResult{RefundID: refundID, Approved: true}, nil
}

func (g *ManualGateway) VerifyWebhook(http.Header, []byte) error {
	return ErrWebhookUnsupported
}

func (g *ManualGateway) ParseWebhook(http.Header, []byte) (*WebhookEvent, error) {
	return nil, ErrWebhookUnsupported
}
