package payment

import (
	"context"
	"time"

	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
)

type Filter struct {
	Status    vo.PaymentStatus
	ContactID uint
	DealID    uint
	Gateway   string
	From      time.Time
	To        time.Time
	Page      int
	PageSize  int
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	// Update fails with a conflict error when the stored version moved on.
	Update(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uint) (*Payment, error)
	GetByReference(ctx context.Context, reference string) (*Payment, error)
	GetByTransactionID(ctx context.Context, gateway, transactionID string) (*Payment, error)
	List(ctx context.Context, filter Filter) ([]*Payment, int64, error)
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*Payment, error)
	// SumSettledByDeal adds the net collected amount (amount minus refunds) of a deal's payments.
	SumSettledByDeal(ctx context.Context, dealID uint, currency string) (money.Money, error)
}

// WebhookEvent is one gateway notification, kept to reject redeliveries.
type WebhookEvent struct {
	Gateway    string
	EventID    string
	EventType  string
	Reference  string
	Payload    []byte
	ReceivedAt time.Time
}

type WebhookEventRepository interface {
	// Record stores the event and reports false when (gateway, event id) was already stored.
	Record(ctx context.Context, event *WebhookEvent) (bool, error)
}
