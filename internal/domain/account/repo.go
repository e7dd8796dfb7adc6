package account

import (
	"context"

	"github.com/mediplus/clinic/internal/platform/auth"
)

// Repository is the storage contract for accounts and their sub-records.
// Get methods return ErrNotFound when no row matches and attach the
// role-specific profile when one exists.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	CreatePatient(ctx context.Context, accountID int64, p *PatientProfile) error
	CreateDoctor(ctx context.Context, accountID int64, d *DoctorProfile) error
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	// List returns accounts ordered by name, surname and id. An empty role
	// lists every account.
	List(ctx context.Context, role auth.Role) ([]*Account, error)
	Update(ctx context.Context, a *Account) error
	UpdatePatient(ctx context.Context, accountID int64, p *PatientProfile) error
	UpdateDoctor(ctx context.Context, accountID int64, d *DoctorProfile) error
	// DeletePatient, DeleteDoctor and Delete return the number of rows removed.
	DeletePatient(ctx context.Context, accountID int64) (int64, error)
	DeleteDoctor(ctx context.Context, accountID int64) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
