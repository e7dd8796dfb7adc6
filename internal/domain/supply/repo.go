package supply

import "context"

type Repository interface {
	Create(ctx context.Context, s *Supply) error
	GetByID(ctx context.Context, id int64) (*Supply, error)
	// List orders by name then id.
	List(ctx context.Context) ([]*Supply, error)
	UpdateStock(ctx context.Context, id int64, stock int) error
	Delete(ctx context.Context, id int64) error
}
