package lead

import "context"

type Filter struct {
	Stage     Stage
	ContactID uint
	Source    string
	Page      int
	PageSize  int
}

type Repository interface {
	Create(ctx context.Context, l *Lead) error
	Update(ctx context.Context, l *Lead) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Lead, error)
	List(ctx context.Context, filter Filter) ([]*Lead, int64, error)
}
