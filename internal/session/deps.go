package session

import (
	"context"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/agenda"
	"github.com/mediplus/clinic/internal/domain/consultation"
	"github.com/mediplus/clinic/internal/domain/prescription"
	"github.com/mediplus/clinic/internal/domain/supply"
	"github.com/mediplus/clinic/internal/platform/auth"
)

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.Identity, error)
}

type Accounts interface {
	CreateAccount(ctx context.Context, in account.NewAccount, opts account.CreateOptions) (*account.Account, error)
	Signup(ctx context.Context, in account.NewAccount) (*account.Account, error)
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
	List(ctx context.Context) ([]*account.Account, error)
	ListPatients(ctx context.Context) ([]*account.Account, error)
	ListDoctors(ctx context.Context) ([]*account.Account, error)
	UpdateProfile(ctx context.Context, username string, u account.Update) (*account.Account, error)
	Delete(ctx context.Context, username string) error
}

type Supplies interface {
	Create(ctx context.Context, s *supply.Supply) error
	List(ctx context.Context) ([]*supply.Supply, error)
	UpdateStock(ctx context.Context, id int64, stock int) error
	Delete(ctx context.Context, id int64) error
}

type Prescriptions interface {
	Create(ctx context.Context, p *prescription.Prescription) error
	Get(ctx context.Context, id int64) (*prescription.Prescription, error)
	List(ctx context.Context) ([]*prescription.Prescription, error)
	ListByPatient(ctx context.Context, username string) ([]*prescription.Prescription, error)
	Delete(ctx context.Context, id int64) error
	LinkSupplyByID(ctx context.Context, prescriptionID, supplyID int64, qty int) (*prescription.Item, error)
	Supplies(ctx context.Context, prescriptionID int64) ([]*prescription.Item, error)
}

type Consultations interface {
	Create(ctx context.Context, c *consultation.Consultation) error
	List(ctx context.Context) ([]*consultation.Consultation, error)
	ListByPatient(ctx context.Context, username string) ([]*consultation.Consultation, error)
}

type Agenda interface {
	Schedule(ctx context.Context, e *agenda.Entry) error
	UpdateStatus(ctx context.Context, id int64, status agenda.Status) error
	List(ctx context.Context) ([]*agenda.Entry, error)
	ListByPatient(ctx context.Context, username string) ([]*agenda.Entry, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*agenda.Entry, error)
}

// Deps are the services a Router hands to the sessions it opens.
type Deps struct {
	Auth          Authenticator
	Accounts      Accounts
	Supplies      Supplies
	Prescriptions Prescriptions
	Consultations Consultations
	Agenda        Agenda
}
