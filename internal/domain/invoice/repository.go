package invoice

import "context"

type Filter struct {
	Status    Status
	ContactID uint
	Year      int
	Page      int
	PageSize  int
}

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Update(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uint) (*Invoice, error)
	// GetByPaymentID returns nil, nil when the payment has no invoice.
	GetByPaymentID(ctx context.Context, paymentID uint) (*Invoice, error)
	List(ctx context.Context, filter Filter) ([]*Invoice, int64, error)
	// NextSequence returns the next free sequence number for the year.
	NextSequence(ctx context.Context, year int) (int, error)
}
