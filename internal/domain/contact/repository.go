package contact

import "context"

type Filter struct {
	Search   string
	Status   Status
	Source   string
	Tag      string
	Page     int
	PageSize int
}

type Repository interface {
	Create(ctx context.Context, c *Contact) error
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Contact, error)
	// GetByEmail and GetByPhone return nil, nil when no contact matches.
	GetByEmail(ctx context.Context, email string) (*Contact, error)
	GetByPhone(ctx context.Context, phone string) (*Contact, error)
	List(ctx context.Context, filter Filter) ([]*Contact, int64, error)
}
