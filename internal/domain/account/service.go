package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediplus/clinic/internal/platform/auth"
	"github.com/mediplus/clinic/internal/platform/db"
	"github.com/mediplus/clinic/internal/platform/sanitize"
)

var (
	ErrNotFound                = errors.New("account not found")
	ErrInvalidAccount          = errors.New("invalid account data")
	ErrAdministratorNotAllowed = errors.New("administrator accounts cannot be created here")
	ErrProfileMismatch         = errors.New("profile does not match role")
	ErrAccountNotCreated       = errors.New("account could not be created")
	ErrAccountInUse            = errors.New("account is referenced by clinical records")
	ErrStore                   = errors.New("account storage failure")
)

type Service struct {
	repo   Repository
	tx     db.Transactor
	hasher *auth.PasswordHasher
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, tx db.Transactor, hasher *auth.PasswordHasher, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		tx:     tx,
		hasher: hasher,
		logger: logger.With().Str("component", "account").Logger(),
		now:    time.Now,
	}
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) validate(in *NewAccount) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)

	switch {
	case in.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidAccount)
	case strings.ContainsAny(in.Username, " \t"):
		return fmt.Errorf("%w: username must not contain spaces", ErrInvalidAccount)
	case in.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidAccount)
	case in.Name == "" || in.Surname == "":
		return fmt.Errorf("%w: name and surname are required", ErrInvalidAccount)
	case in.BirthDate.IsZero():
		return fmt.Errorf("%w: birth date is required", ErrInvalidAccount)
	case in.BirthDate.After(s.now()):
		return fmt.Errorf("%w: birth date is in the future", ErrInvalidAccount)
	}
	if !in.Role.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidAccount, auth.ErrInvalidRole)
	}
	if in.Profile != nil && in.Profile.role() != in.Role {
		return ErrProfileMismatch
	}

	if err := sanitize.Fields(
		"username", in.Username,
		"name", in.Name,
		"surname", in.Surname,
		"phone", in.Phone,
		"email", in.Email,
	); err != nil {
		return err
	}
	switch p := in.Profile.(type) {
	case *PatientProfile:
		if p.Locality != nil {
			return sanitize.Check("locality", *p.Locality)
		}
	case *DoctorProfile:
		if p.Specialty != nil {
			if err := sanitize.Check("specialty", *p.Specialty); err != nil {
				return err
			}
		}
		if p.OfficeHours != nil {
			return sanitize.Check("office hours", *p.OfficeHours)
		}
	}
	return nil
}

// withDefaults returns the sub-record to insert for role, filling unset dates
// with today and doctor office hours with DefaultOfficeHours.
func (s *Service) withDefaults(role auth.Role, p Profile) Profile {
	switch role {
	case auth.RolePatient:
		pp, _ := p.(*PatientProfile)
		out := &PatientProfile{}
		if pp != nil {
			*out = *pp
		}
		if out.FirstVisit.IsZero() {
			out.FirstVisit = s.today()
		}
		return out
	case auth.RoleDoctor:
		dp, _ := p.(*DoctorProfile)
		out := &DoctorProfile{}
		if dp != nil {
			*out = *dp
		}
		if out.HireDate.IsZero() {
			out.HireDate = s.today()
		}
		if out.OfficeHours == nil {
			hours := DefaultOfficeHours
			out.OfficeHours = &hours
		}
		return out
	}
	return nil
}

// CreateAccount hashes the password and stores the account together with its
// sub-record in one unit of work. Storage failures, a duplicate username
// included, are reported as ErrAccountNotCreated; the cause is only logged.
func (s *Service) CreateAccount(ctx context.Context, in NewAccount, opts CreateOptions) (*Account, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	if in.Role == auth.RoleAdministrator && !opts.AllowAdministrator {
		return nil, ErrAdministratorNotAllowed
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error().Err(err).Str("username", in.Username).Msg("hash password")
		return nil, ErrAccountNotCreated
	}

	a := &Account{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Surname:      in.Surname,
		BirthDate:    in.BirthDate,
		Role:         in.Role,
		Phone:        optional(in.Phone),
		Email:        optional(in.Email),
		Profile:      s.withDefaults(in.Role, in.Profile),
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, a); err != nil {
			return fmt.Errorf("insert account: %w", err)
		}
		switch p := a.Profile.(type) {
		case *PatientProfile:
			if err := s.repo.CreatePatient(ctx, a.ID, p); err != nil {
				return fmt.Errorf("insert patient: %w", err)
			}
		case *DoctorProfile:
			if err := s.repo.CreateDoctor(ctx, a.ID, p); err != nil {
				return fmt.Errorf("insert doctor: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		ev := s.logger.Error()
		if db.IsUniqueViolation(err) {
			ev = s.logger.Warn()
		}
		ev.Err(err).Str("username", a.Username).Str("role", a.Role.String()).Msg("create account")
		a.ID = 0
		return nil, ErrAccountNotCreated
	}

	s.logger.Info().Int64("account_id", a.ID).Str("username", a.Username).Str("role", a.Role.String()).Msg("account created")
	return a, nil
}

// Signup is self-service creation. It never creates administrators.
func (s *Service) Signup(ctx context.Context, in NewAccount) (*Account, error) {
	return s.CreateAccount(ctx, in, CreateOptions{})
}

func (s *Service) storeErr(err error, msg string, fields ...string) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	ev := s.logger.Error().Err(err)
	for i := 0; i+1 < len(fields); i += 2 {
		ev = ev.Str(fields[i], fields[i+1])
	}
	ev.Msg(msg)
	return ErrStore
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*Account, error) {
	a, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, s.storeErr(err, "get account", "username", username)
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, "get account by id")
	}
	return a, nil
}

// LookupCredentials lets the Authenticator read stored hashes.
func (s *Service) LookupCredentials(ctx context.Context, username string) (*auth.Credentials, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, auth.ErrUnknownUsername
		}
		return nil, fmt.Errorf("lookup credentials: %w", err)
	}
	return &auth.Credentials{Identity: a.Identity(), PasswordHash: a.PasswordHash}, nil
}

// List returns every account ordered by name, surname and id.
func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.list(ctx, "")
}

func (s *Service) ListPatients(ctx context.Context) ([]*Account, error) {
	return s.list(ctx, auth.RolePatient)
}

func (s *Service) ListDoctors(ctx context.Context) ([]*Account, error) {
	return s.list(ctx, auth.RoleDoctor)
}

func (s *Service) list(ctx context.Context, role auth.Role) ([]*Account, error) {
	items, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, s.storeErr(err, "list accounts", "role", role.String())
	}
	return items, nil
}

func applyText(dst **string, src *string) {
	if src == nil {
		return
	}
	*dst = optional(strings.TrimSpace(*src))
}

func (s *Service) checkUpdate(u Update) error {
	pairs := []struct {
		field string
		value *string
	}{
		{"name", u.Name}, {"surname", u.Surname}, {"phone", u.Phone}, {"email", u.Email},
		{"locality", u.Locality}, {"specialty", u.Specialty}, {"office hours", u.OfficeHours},
	}
	for _, p := range pairs {
		if p.value == nil {
			continue
		}
		if err := sanitize.Check(p.field, *p.value); err != nil {
			return err
		}
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name must not be blank", ErrInvalidAccount)
	}
	if u.Surname != nil && strings.TrimSpace(*u.Surname) == "" {
		return fmt.Errorf("%w: surname must not be blank", ErrInvalidAccount)
	}
	if u.BirthDate != nil && (u.BirthDate.IsZero() || u.BirthDate.After(s.now())) {
		return fmt.Errorf("%w: birth date must be a past date", ErrInvalidAccount)
	}
	return nil
}

// UpdateProfile changes account and sub-record fields of username in one unit
// of work. Fields that do not apply to the account's role are refused with
// ErrProfileMismatch.
func (s *Service) UpdateProfile(ctx context.Context, username string, u Update) (*Account, error) {
	username = strings.TrimSpace(username)
	if err := s.checkUpdate(u); err != nil {
		return nil, err
	}

	var updated *Account
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if u.touchesPatient() && a.Role != auth.RolePatient {
			return ErrProfileMismatch
		}
		if u.touchesDoctor() && a.Role != auth.RoleDoctor {
			return ErrProfileMismatch
		}

		if u.touchesAccount() {
			if u.Name != nil {
				a.Name = strings.TrimSpace(*u.Name)
			}
			if u.Surname != nil {
				a.Surname = strings.TrimSpace(*u.Surname)
			}
			if u.BirthDate != nil {
				a.BirthDate = *u.BirthDate
			}
			applyText(&a.Phone, u.Phone)
			applyText(&a.Email, u.Email)
			if err := s.repo.Update(ctx, a); err != nil {
				return fmt.Errorf("update account: %w", err)
			}
		}

		if u.touchesPatient() {
			p, ok := a.PatientProfile()
			if !ok {
				return fmt.Errorf("patient %s has no profile: %w", a.Username, ErrNotFound)
			}
			applyText(&p.Locality, u.Locality)
			if u.FirstVisit != nil {
				p.FirstVisit = *u.FirstVisit
			}
			if err := s.repo.UpdatePatient(ctx, a.ID, p); err != nil {
				return fmt.Errorf("update patient: %w", err)
			}
		}

		if u.touchesDoctor() {
			d, ok := a.DoctorProfile()
			if !ok {
				return fmt.Errorf("doctor %s has no profile: %w", a.Username, ErrNotFound)
			}
			applyText(&d.Specialty, u.Specialty)
			applyText(&d.OfficeHours, u.OfficeHours)
			if u.HireDate != nil {
				d.HireDate = *u.HireDate
			}
			if err := s.repo.UpdateDoctor(ctx, a.ID, d); err != nil {
				return fmt.Errorf("update doctor: %w", err)
			}
		}

		updated = a
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProfileMismatch) {
			return nil, ErrProfileMismatch
		}
		return nil, s.storeErr(err, "update account", "username", username)
	}
	return updated, nil
}

// Delete removes the sub-record and then the account row of username in one
// unit of work.
func (s *Service) Delete(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		switch a.Role {
		case auth.RolePatient:
			if _, err := s.repo.DeletePatient(ctx, a.ID); err != nil {
				return fmt.Errorf("delete patient: %w", err)
			}
		case auth.RoleDoctor:
			if _, err := s.repo.DeleteDoctor(ctx, a.ID); err != nil {
				return fmt.Errorf("delete doctor: %w", err)
			}
		}
		n, err := s.repo.Delete(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		s.logger.Info().Str("username", username).Msg("account deleted")
		return nil
	case db.IsForeignKeyViolation(err):
		s.logger.Warn().Err(err).Str("username", username).Msg("delete account")
		return ErrAccountInUse
	default:
		return s.storeErr(err, "delete account", "username", username)
	}
}
