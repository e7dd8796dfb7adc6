// Package session routes an authenticated identity to the operations its
// role may perform.
//
// A Router holds at most one open session. Each role has its own session type
// whose methods are the role's operations, so an operation of another role is
// not reachable without logging out first.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/platform/auth"
)

// State of the Router.
type State int

const (
	LoggedOut State = iota
	PatientSession
	DoctorSession
	AdminSession
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged out"
	case PatientSession:
		return "patient session"
	case DoctorSession:
		return "doctor session"
	case AdminSession:
		return "administrator session"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrAlreadyLoggedIn  = errors.New("a session is already open, log out first")
	ErrSessionClosed    = errors.New("session is closed")
	ErrUnsupportedRole  = errors.New("account role has no session")
	ErrNotAPatient      = errors.New("account is not a patient")
	ErrCannotDeleteSelf = errors.New("an administrator cannot delete their own account")
)

// Session is implemented by *Patient, *Doctor and *Admin.
type Session interface {
	ID() string
	Identity() auth.Identity
	State() State
	close()
}

type Router struct {
	deps   Deps
	logger zerolog.Logger
	active Session
}

func NewRouter(deps Deps, logger zerolog.Logger) *Router {
	return &Router{deps: deps, logger: logger}
}

// State reports LoggedOut or the state of the open session.
func (r *Router) State() State {
	if r.active == nil {
		return LoggedOut
	}
	return r.active.State()
}

// Current returns the open session, or nil.
func (r *Router) Current() Session {
	return r.active
}

// Login authenticates and opens the session matching the account's role.
func (r *Router) Login(ctx context.Context, username, password string) (Session, error) {
	if r.active != nil {
		return nil, ErrAlreadyLoggedIn
	}

	id, err := r.deps.Auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	b := base{
		deps:     r.deps,
		identity: *id,
		id:       uuid.NewString(),
	}
	b.logger = r.logger.With().Str("session_id", b.id).Str("username", id.Username).Logger()

	var s Session
	switch id.Role {
	case auth.RolePatient:
		s = &Patient{base: b}
	case auth.RoleDoctor:
		s = newDoctor(b)
	case auth.RoleAdministrator:
		s = newAdmin(b)
	default:
		r.logger.Error().Str("username", id.Username).Str("role", id.Role.String()).Msg("login with unsupported role")
		return nil, ErrUnsupportedRole
	}

	r.active = s
	b.logger.Info().Str("state", s.State().String()).Msg("session opened")
	return s, nil
}

// Signup creates a patient or doctor account. It is only offered while
// logged out.
func (r *Router) Signup(ctx context.Context, in account.NewAccount) (*account.Account, error) {
	if r.active != nil {
		return nil, ErrAlreadyLoggedIn
	}
	return r.deps.Accounts.Signup(ctx, in)
}

// Logout closes the open session, if any, and returns to LoggedOut. Handles
// to the closed session fail with ErrSessionClosed from then on.
func (r *Router) Logout() {
	if r.active == nil {
		return
	}
	r.active.close()
	r.logger.Info().Str("session_id", r.active.ID()).Msg("session closed")
	r.active = nil
}

type base struct {
	deps     Deps
	identity auth.Identity
	id       string
	logger   zerolog.Logger
	closed   bool
}

func (b *base) ID() string              { return b.id }
func (b *base) Identity() auth.Identity { return b.identity }
func (b *base) close()                  { b.closed = true }

func (b *base) check() error {
	if b.closed {
		return ErrSessionClosed
	}
	return nil
}

// Profile returns the session owner's account with its profile attached.
func (b *base) Profile(ctx context.Context) (*account.Account, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	return b.deps.Accounts.GetByUsername(ctx, b.identity.Username)
}

// UpdateProfile edits the session owner's own account.
func (b *base) UpdateProfile(ctx context.Context, u account.Update) (*account.Account, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	a, err := b.deps.Accounts.UpdateProfile(ctx, b.identity.Username, u)
	if err != nil {
		return nil, err
	}
	b.identity.Name, b.identity.Surname, b.identity.BirthDate = a.Name, a.Surname, a.BirthDate
	b.logger.Info().Msg("profile updated")
	return a, nil
}
