package consultation

import "context"

type Repository interface {
	Create(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id int64) (*Consultation, error)
	// List and ListByPatient return the newest consultations first.
	List(ctx context.Context) ([]*Consultation, error)
	ListByPatient(ctx context.Context, username string) ([]*Consultation, error)
	Delete(ctx context.Context, id int64) error
}
