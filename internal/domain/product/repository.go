package product

import "context"

type Filter struct {
	Type       Type
	ActiveOnly bool
	Page       int
	PageSize   int
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	// List orders by sort order, then name.
	List(ctx context.Context, filter Filter) ([]*Product, int64, error)
}
