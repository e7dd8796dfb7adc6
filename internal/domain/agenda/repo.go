package agenda

import "context"

// Repository lists entries by scheduled date, earliest first, then by id.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id int64) (*Entry, error)
	List(ctx context.Context) ([]*Entry, error)
	ListByPatient(ctx context.Context, username string) ([]*Entry, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*Entry, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
}
