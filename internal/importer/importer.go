// Package importer bulk-loads accounts and supplies from JSON files.
//
// Every loader processes the whole file: a row that cannot be stored is
// counted and logged, it never aborts the rest of the batch.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/supply"
	"github.com/mediplus/clinic/internal/platform/auth"
)

const (
	DateLayout = "2006-01-02"

	DirectoryPassword  = "password123"
	DirectorySpecialty = "General Medicine"
	DefaultSpecialty   = "General"
)

// DirectoryBirthDate is assigned to every account loaded from a directory file.
var DirectoryBirthDate = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

var ErrMalformedFile = errors.New("import file is not a JSON array of records")

// Report counts the outcome of one load.
type Report struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (r Report) String() string {
	return fmt.Sprintf("%d created, %d skipped, %d failed", r.Created, r.Skipped, r.Failed)
}

type Accounts interface {
	CreateAccount(ctx context.Context, in account.NewAccount, opts account.CreateOptions) (*account.Account, error)
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
}

type Supplies interface {
	Create(ctx context.Context, s *supply.Supply) error
}

type Importer struct {
	accounts Accounts
	supplies Supplies
	logger   zerolog.Logger
}

func New(accounts Accounts, supplies Supplies, logger zerolog.Logger) *Importer {
	return &Importer{
		accounts: accounts,
		supplies: supplies,
		logger:   logger.With().Str("component", "importer").Logger(),
	}
}

func decode[T any](r io.Reader) ([]T, error) {
	var rows []T
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return rows, nil
}

// AccountRecord is one row of a role-discriminated accounts file.
type AccountRecord struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birth_date"`
	Role      string `json:"role"`
	Locality  string `json:"locality,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// LoadAccounts creates one account per record. Records with an unknown role
// are skipped. Administrators are allowed.
func (im *Importer) LoadAccounts(ctx context.Context, r io.Reader) (Report, error) {
	rows, err := decode[AccountRecord](r)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for i, row := range rows {
		role, err := auth.ParseRole(row.Role)
		if err != nil {
			im.logger.Warn().Int("row", i).Str("username", row.Username).Str("role", row.Role).Msg("skipping record with unknown role")
			rep.Skipped++
			continue
		}
		birth, err := time.Parse(DateLayout, strings.TrimSpace(row.BirthDate))
		if err != nil {
			im.logger.Warn().Int("row", i).Str("username", row.Username).Err(err).Msg("invalid birth date")
			rep.Failed++
			continue
		}

		in := account.NewAccount{
			Username:  row.Username,
			Password:  row.Password,
			Name:      row.Name,
			Surname:   row.Surname,
			BirthDate: birth,
			Role:      role,
			Phone:     row.Phone,
			Email:     row.Email,
		}
		switch role {
		case auth.RolePatient:
			p := &account.PatientProfile{}
			if loc := strings.TrimSpace(row.Locality); loc != "" {
				p.Locality = &loc
			}
			in.Profile = p
		case auth.RoleDoctor:
			spec := strings.TrimSpace(row.Specialty)
			if spec == "" {
				spec = DefaultSpecialty
			}
			in.Profile = &account.DoctorProfile{Specialty: &spec}
		}

		if _, err := im.accounts.CreateAccount(ctx, in, account.CreateOptions{AllowAdministrator: true}); err != nil {
			im.logger.Warn().Int("row", i).Str("username", row.Username).Err(err).Msg("account not imported")
			rep.Failed++
			continue
		}
		rep.Created++
	}

	im.logger.Info().Int("created", rep.Created).Int("skipped", rep.Skipped).Int("failed", rep.Failed).Msg("accounts imported")
	return rep, nil
}

// DirectoryRecord is one row of a public user directory dump.
type DirectoryRecord struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  struct {
		City string `json:"city"`
	} `json:"address"`
}

var directoryRoles = []auth.Role{auth.RolePatient, auth.RoleDoctor, auth.RoleAdministrator}

func splitName(full string) (name, surname string) {
	name, surname, _ = strings.Cut(strings.TrimSpace(full), " ")
	if name == "" {
		name = "User"
	}
	surname = strings.TrimSpace(surname)
	if surname == "" {
		surname = "Test"
	}
	return name, surname
}

// LoadDirectory turns directory entries into accounts with the fixed password
// DirectoryPassword. Roles rotate patient, doctor, administrator over the
// entries processed so far, existing usernames included. Existing usernames
// are skipped.
func (im *Importer) LoadDirectory(ctx context.Context, r io.Reader) (Report, error) {
	rows, err := decode[DirectoryRecord](r)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for i, row := range rows {
		username := strings.TrimSpace(row.Username)
		if username == "" {
			username = fmt.Sprintf("user%d", row.ID)
		}

		_, err := im.accounts.GetByUsername(ctx, username)
		switch {
		case err == nil:
			im.logger.Debug().Str("username", username).Msg("account already exists")
			rep.Skipped++
			continue
		case !errors.Is(err, account.ErrNotFound):
			im.logger.Error().Int("row", i).Str("username", username).Err(err).Msg("look up account")
			rep.Failed++
			continue
		}

		role := directoryRoles[(rep.Created+rep.Skipped)%len(directoryRoles)]
		name, surname := splitName(row.Name)
		in := account.NewAccount{
			Username:  username,
			Password:  DirectoryPassword,
			Name:      name,
			Surname:   surname,
			BirthDate: DirectoryBirthDate,
			Role:      role,
			Phone:     row.Phone,
			Email:     row.Email,
		}
		switch role {
		case auth.RolePatient:
			p := &account.PatientProfile{}
			if city := strings.TrimSpace(row.Address.City); city != "" {
				p.Locality = &city
			}
			in.Profile = p
		case auth.RoleDoctor:
			spec := DirectorySpecialty
			in.Profile = &account.DoctorProfile{Specialty: &spec}
		}

		if _, err := im.accounts.CreateAccount(ctx, in, account.CreateOptions{AllowAdministrator: true}); err != nil {
			im.logger.Warn().Int("row", i).Str("username", username).Err(err).Msg("account not imported")
			rep.Failed++
			continue
		}
		im.logger.Info().Str("username", username).Str("role", role.String()).Msg("account imported")
		rep.Created++
	}

	im.logger.Info().Int("created", rep.Created).Int("skipped", rep.Skipped).Int("failed", rep.Failed).Msg("directory imported")
	return rep, nil
}

// SupplyRecord is one row of a supplies file.
type SupplyRecord struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	UnitCostUSD float64 `json:"unit_cost_usd"`
}

func (im *Importer) LoadSupplies(ctx context.Context, r io.Reader) (Report, error) {
	rows, err := decode[SupplyRecord](r)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for i, row := range rows {
		s := &supply.Supply{Name: row.Name, Category: row.Category, Stock: row.Stock, UnitCostUSD: row.UnitCostUSD}
		if err := im.supplies.Create(ctx, s); err != nil {
			im.logger.Warn().Int("row", i).Str("name", row.Name).Err(err).Msg("supply not imported")
			rep.Failed++
			continue
		}
		rep.Created++
	}

	im.logger.Info().Int("created", rep.Created).Int("failed", rep.Failed).Msg("supplies imported")
	return rep, nil
}
