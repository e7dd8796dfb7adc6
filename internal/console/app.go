// Package console is the terminal front end. It reads commands from an
// io.Reader and writes menus and tables to an io.Writer, so a whole session
// can be replayed in tests.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/importer"
	"github.com/mediplus/clinic/internal/platform/auth"
	"github.com/mediplus/clinic/internal/session"
)

// File names looked up in Options.DataDir by the load entries of the main menu.
const (
	AccountsFile  = "accounts.json"
	DirectoryFile = "users.json"
	SuppliesFile  = "supplies.json"
)

var (
	errExit        = errors.New("exit requested")
	errInterrupted = errors.New("interrupted")
)

type Importer interface {
	LoadAccounts(ctx context.Context, r io.Reader) (importer.Report, error)
	LoadDirectory(ctx context.Context, r io.Reader) (importer.Report, error)
	LoadSupplies(ctx context.Context, r io.Reader) (importer.Report, error)
}

type Options struct {
	// Importer enables the load entries of the main menu when set.
	Importer Importer
	DataDir  string
}

type App struct {
	router *session.Router
	in     *bufio.Reader
	lines  chan line
	done   <-chan struct{}
	eof    error
	out    io.Writer
	opts   Options
	logger zerolog.Logger
}

func New(router *session.Router, in io.Reader, out io.Writer, opts Options, logger zerolog.Logger) *App {
	return &App{
		router: router,
		in:     bufio.NewReader(in),
		out:    out,
		opts:   opts,
		logger: logger.With().Str("component", "console").Logger(),
	}
}

// Run serves menus until the user exits from the main menu or input ends.
// Both are a clean shutdown and return nil.
//
// Cancelling ctx, as SIGINT does, unblocks a pending prompt and also ends
// the loop cleanly.
func (a *App) Run(ctx context.Context) error {
	defer a.router.Logout()
	a.done = ctx.Done()
	for {
		if ctx.Err() != nil {
			a.printf("\nInterrupted. Goodbye.\n")
			return nil
		}

		var err error
		switch s := a.router.Current().(type) {
		case nil:
			err = a.mainMenu(ctx)
		case *session.Patient:
			err = a.patientMenu(ctx, s)
		case *session.Doctor:
			err = a.doctorMenu(ctx, s)
		case *session.Admin:
			err = a.adminMenu(ctx, s)
		default:
			return fmt.Errorf("console: unexpected session %T", s)
		}

		switch {
		case errors.Is(err, errExit), errors.Is(err, io.EOF):
			a.printf("\nGoodbye.\n")
			return nil
		case errors.Is(err, errInterrupted):
			continue
		case err != nil:
			return err
		}
	}
}

type mainEntry struct {
	label string
	run   func(ctx context.Context) error
}

func (a *App) mainEntries() []mainEntry {
	entries := []mainEntry{
		{"Sign up", a.signup},
		{"Log in", a.login},
	}
	if a.opts.Importer != nil {
		entries = append(entries,
			mainEntry{"Load accounts (" + AccountsFile + ")", a.loader(AccountsFile, a.opts.Importer.LoadAccounts)},
			mainEntry{"Load users directory (" + DirectoryFile + ")", a.loader(DirectoryFile, a.opts.Importer.LoadDirectory)},
			mainEntry{"Load supplies (" + SuppliesFile + ")", a.loader(SuppliesFile, a.opts.Importer.LoadSupplies)},
		)
	}
	return entries
}

func (a *App) mainMenu(ctx context.Context) error {
	entries := a.mainEntries()
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.label
	}
	n, err := a.choose("MediPlus - Main menu", labels, "Exit")
	if err != nil {
		return err
	}
	if n == 0 {
		return errExit
	}
	return a.step(entries[n-1].run(ctx))
}

// step reports an operation error and keeps the loop alive. Only the end of
// input and an interrupt are passed through.
func (a *App) step(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, errInterrupted) {
		return err
	}
	a.fail(err)
	return nil
}

func (a *App) login(ctx context.Context) error {
	username, err := a.text("Username")
	if err != nil {
		return err
	}
	password, err := a.text("Password")
	if err != nil {
		return err
	}
	s, err := a.router.Login(ctx, username, password)
	if err != nil {
		return err
	}
	id := s.Identity()
	a.printf("\nWelcome, %s (%s).\n", id.FullName(), id.Role)
	return nil
}

func (a *App) signup(ctx context.Context) error {
	n, err := a.choose("Account type", []string{"Patient", "Doctor"}, "Back")
	if err != nil || n == 0 {
		return err
	}
	role := auth.RolePatient
	if n == 2 {
		role = auth.RoleDoctor
	}

	in, err := a.newAccount(role)
	if err != nil {
		return err
	}
	created, err := a.router.Signup(ctx, in)
	if err != nil {
		return err
	}
	a.ok("account %s created.", created.Username)
	return nil
}

// newAccount reads the fields of a new account of role, including its
// role's profile fields.
func (a *App) newAccount(role auth.Role) (account.NewAccount, error) {
	in := account.NewAccount{Role: role}
	var err error
	if in.Username, err = a.required("Username"); err != nil {
		return in, err
	}
	if in.Password, err = a.required("Password"); err != nil {
		return in, err
	}
	if in.Name, err = a.required("Name"); err != nil {
		return in, err
	}
	if in.Surname, err = a.required("Surname"); err != nil {
		return in, err
	}
	if in.BirthDate, err = a.date("Birth date"); err != nil {
		return in, err
	}
	if in.Phone, err = a.text("Phone (optional)"); err != nil {
		return in, err
	}
	if in.Email, err = a.text("Email (optional)"); err != nil {
		return in, err
	}

	switch role {
	case auth.RolePatient:
		loc, err := a.text("Locality (optional)")
		if err != nil {
			return in, err
		}
		p := &account.PatientProfile{}
		if loc != "" {
			p.Locality = &loc
		}
		in.Profile = p
	case auth.RoleDoctor:
		spec, err := a.text("Specialty (optional)")
		if err != nil {
			return in, err
		}
		hours, err := a.text("Office hours (blank for " + account.DefaultOfficeHours + ")")
		if err != nil {
			return in, err
		}
		d := &account.DoctorProfile{}
		if spec != "" {
			d.Specialty = &spec
		}
		if hours != "" {
			d.OfficeHours = &hours
		}
		in.Profile = d
	}
	return in, nil
}

type loadFunc func(ctx context.Context, r io.Reader) (importer.Report, error)

func (a *App) loader(name string, load loadFunc) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		path := filepath.Join(a.opts.DataDir, name)
		f, err := os.Open(path)
		if err != nil {
			a.logger.Warn().Err(err).Str("path", path).Msg("open import file")
			return fmt.Errorf("cannot open %s", path)
		}
		defer f.Close()

		rep, err := load(ctx, f)
		if err != nil {
			return err
		}
		a.info("%s: %s.", name, rep)
		return nil
	}
}
