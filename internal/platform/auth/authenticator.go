// Package auth verifies credentials and resolves the role of an account.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
	ErrUnavailable        = errors.New("authentication is temporarily unavailable")

	// ErrUnknownUsername is returned by a CredentialStore when no account has
	// the requested username. It never leaves this package.
	ErrUnknownUsername = errors.New("unknown username")
)

// Identity is the authenticated account as seen by the rest of the program.
type Identity struct {
	ID        int64
	Username  string
	Name      string
	Surname   string
	BirthDate time.Time
	Role      Role
}

func (i Identity) FullName() string {
	return strings.TrimSpace(i.Name + " " + i.Surname)
}

// Credentials is an Identity plus its stored password hash.
type Credentials struct {
	Identity
	PasswordHash string
}

// CredentialStore looks up the stored hash and role for a username.
type CredentialStore interface {
	LookupCredentials(ctx context.Context, username string) (*Credentials, error)
}

type Authenticator struct {
	store    CredentialStore
	hasher   *PasswordHasher
	throttle *Throttle
	logger   zerolog.Logger
}

// NewAuthenticator wires a credential store and hasher. A nil throttle
// disables attempt limiting.
func NewAuthenticator(store CredentialStore, hasher *PasswordHasher, throttle *Throttle, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		store:    store,
		hasher:   hasher,
		throttle: throttle,
		logger:   logger,
	}
}

// Login checks username and password. It has no side effects on the store.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if a.throttle != nil && !a.throttle.Allow(username) {
		a.logger.Warn().Str("username", username).Msg("login throttled")
		return nil, ErrTooManyAttempts
	}

	creds, err := a.store.LookupCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUnknownUsername) {
			a.hasher.burn(password)
			a.logger.Warn().Str("username", username).Msg("login failed")
			a.logger.Debug().Str("username", username).Msg("login failed: unknown username")
			return nil, ErrInvalidCredentials
		}
		a.logger.Error().Err(err).Str("username", username).Msg("credential lookup failed")
		return nil, ErrUnavailable
	}

	if !a.hasher.Check(creds.PasswordHash, password) {
		a.logger.Warn().Str("username", username).Msg("login failed")
		a.logger.Debug().Str("username", username).Msg("login failed: password mismatch")
		return nil, ErrInvalidCredentials
	}

	id := creds.Identity
	a.logger.Info().Str("username", id.Username).Str("role", id.Role.String()).Msg("login succeeded")
	return &id, nil
}
