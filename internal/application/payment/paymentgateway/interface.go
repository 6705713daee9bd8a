package paymentgateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
)

var (
	ErrInvalidSignature   = errors.New("webhook signature is invalid")
	ErrWebhookUnsupported = errors.New("gateway does not send webhooks")
	ErrTokenRequired      = errors.New("a stored card token is required")
	ErrNotConfirmed       = errors.New("gateway did not confirm the transaction")
)

// PaymentGateway is implemented by every payment provider adapter.
type PaymentGateway interface {
	Name() string
	// ProcessPayment charges a stored token or opens a hosted payment page.
	ProcessPayment(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	RefundPayment(ctx context.Context, req RefundRequest) (*RefundResult, error)
	VerifyWebhook(header http.Header, body []byte) error
	// ParseWebhook must only be called after VerifyWebhook succeeded.
	ParseWebhook(header http.Header, body []byte) (*WebhookEvent, error)
}

// WebhookConfirmer is implemented by gateways whose notifications can be replayed
// by the payer. A paid event is applied only after ConfirmWebhook returns nil.
type WebhookConfirmer interface {
	ConfirmWebhook(ctx context.Context, event *WebhookEvent) error
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

type ChargeRequest struct {
	Reference    string
	Amount       money.Money
	Description  string
	Installments int
	CardToken    string
	CardExpiry   string
	Customer     Customer
	NotifyURL    string
	SuccessURL   string
	FailureURL   string
}

type ChargeStatus string

const (
	ChargeApproved ChargeStatus = "approved"
	// ChargePending means the customer still has to finish on RedirectURL.
	ChargePending  ChargeStatus = "pending"
	ChargeDeclined ChargeStatus = "declined"
)

type ChargeResult struct {
	Status        ChargeStatus
	TransactionID string
	RedirectURL   string
	CardToken     string
	Message       string
}

type RefundRequest struct {
	Reference     string
	TransactionID string
	Amount        money.Money
}

type RefundResult struct {
	RefundID string
	Approved bool
	Message  string
}

type EventStatus string

const (
	EventPaid     EventStatus = "paid"
	EventFailed   EventStatus = "failed"
	EventRefunded EventStatus = "refunded"
)

// WebhookEvent is a gateway notification normalised across providers.
type WebhookEvent struct {
	EventID       string
	EventType     string
	Reference     string
	TransactionID string
	Status        EventStatus
	Amount        money.Money
	Reason        string
	OccurredAt    time.Time
}
