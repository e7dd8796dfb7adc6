package session

import (
	"context"
	"strings"

	"github.com/mediplus/clinic/internal/domain/account"
)

// Admin is the session of a logged-in administrator.
type Admin struct {
	base
	inventory
}

func newAdmin(b base) *Admin {
	a := &Admin{base: b}
	a.inventory = inventory{s: &a.base}
	return a
}

func (*Admin) State() State { return AdminSession }

func (a *Admin) Menu() []AdminOp { return AdminMenu() }

func (a *Admin) Accounts(ctx context.Context) ([]*account.Account, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	return a.deps.Accounts.List(ctx)
}

func (a *Admin) Patients(ctx context.Context) ([]*account.Account, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	return a.deps.Accounts.ListPatients(ctx)
}

func (a *Admin) Doctors(ctx context.Context) ([]*account.Account, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	return a.deps.Accounts.ListDoctors(ctx)
}

func (a *Admin) Account(ctx context.Context, username string) (*account.Account, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	return a.deps.Accounts.GetByUsername(ctx, username)
}

// CreateAccount creates an account of any role, administrators included.
func (a *Admin) CreateAccount(ctx context.Context, in account.NewAccount) (*account.Account, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	created, err := a.deps.Accounts.CreateAccount(ctx, in, account.CreateOptions{AllowAdministrator: true})
	if err != nil {
		return nil, err
	}
	a.logger.Info().Str("created", created.Username).Str("role", created.Role.String()).Msg("account created by administrator")
	return created, nil
}

func (a *Admin) UpdateAccount(ctx context.Context, username string, u account.Update) (*account.Account, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(username) == a.identity.Username {
		return a.UpdateProfile(ctx, u)
	}
	return a.deps.Accounts.UpdateProfile(ctx, username, u)
}

func (a *Admin) DeleteAccount(ctx context.Context, username string) error {
	if err := a.check(); err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == a.identity.Username {
		return ErrCannotDeleteSelf
	}
	if err := a.deps.Accounts.Delete(ctx, username); err != nil {
		return err
	}
	a.logger.Info().Str("deleted", username).Msg("account deleted by administrator")
	return nil
}
