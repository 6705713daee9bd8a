package deal

import "context"

type Filter struct {
	Status    Status
	ContactID uint
	Page      int
	PageSize  int
}

type Repository interface {
	Create(ctx context.Context, d *Deal) error
	Update(ctx context.Context, d *Deal) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Deal, error)
	List(ctx context.Context, filter Filter) ([]*Deal, int64, error)
}
