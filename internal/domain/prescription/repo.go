package prescription

import "context"

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	// List and ListByPatient order by id.
	List(ctx context.Context) ([]*Prescription, error)
	ListByPatient(ctx context.Context, username string) ([]*Prescription, error)
	Delete(ctx context.Context, id int64) error
	AddItem(ctx context.Context, it *Item) error
	Items(ctx context.Context, prescriptionID int64) ([]*Item, error)
}
