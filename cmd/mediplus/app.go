package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mediplus/clinic/internal/config"
	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/agenda"
	"github.com/mediplus/clinic/internal/domain/consultation"
	"github.com/mediplus/clinic/internal/domain/prescription"
	"github.com/mediplus/clinic/internal/domain/supply"
	"github.com/mediplus/clinic/internal/importer"
	"github.com/mediplus/clinic/internal/platform/auth"
	"github.com/mediplus/clinic/internal/platform/db"
	"github.com/mediplus/clinic/internal/platform/logging"
	"github.com/mediplus/clinic/internal/session"
	"github.com/mediplus/clinic/migrations"
)

// app is what every database-backed command starts from.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
}

// loadConfig reads and validates configuration and builds the logger, which
// writes to logOut.
func loadConfig(configFile string, logOut io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	logger, err := logging.New(logOut, cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func connect(ctx context.Context, configFile string, logOut io.Writer) (*app, error) {
	cfg, logger, err := loadConfig(configFile, logOut)
	if err != nil {
		return nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")
	return &app{cfg: cfg, logger: logger, pool: pool}, nil
}

func (a *app) Close() {
	a.pool.Close()
}

// migrationFiles returns the embedded migrations unless a directory is
// configured.
func migrationFiles(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func (a *app) migrate(ctx context.Context) error {
	n, err := db.EnsureSchema(ctx, a.pool, a.cfg.DBSchema, migrationFiles(a.cfg.MigrationsDir))
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.logger.Info().Int("applied", n).Str("schema", a.cfg.DBSchema).Msg("schema up to date")
	return nil
}

// services wires the repositories and services of every domain package.
type services struct {
	accounts      *account.Service
	supplies      *supply.Service
	prescriptions *prescription.Service
	consultations *consultation.Service
	agenda        *agenda.Service
	auth          *auth.Authenticator
}

func (a *app) services() (*services, error) {
	hasher, err := auth.NewPasswordHasher(a.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	accounts := account.NewService(account.NewRepo(a.pool), db.NewTxManager(a.pool), hasher, a.logger)
	throttle := auth.NewThrottle(a.cfg.LoginAttemptsPerMinute, a.cfg.LoginBurst)
	return &services{
		accounts:      accounts,
		supplies:      supply.NewService(supply.NewRepo(a.pool), a.logger),
		prescriptions: prescription.NewService(prescription.NewRepo(a.pool), a.logger),
		consultations: consultation.NewService(consultation.NewRepo(a.pool), a.logger),
		agenda:        agenda.NewService(agenda.NewRepo(a.pool), a.logger),
		auth:          auth.NewAuthenticator(accounts, hasher, throttle, a.logger),
	}, nil
}

func (s *services) router(logger zerolog.Logger) *session.Router {
	return session.NewRouter(session.Deps{
		Auth:          s.auth,
		Accounts:      s.accounts,
		Supplies:      s.supplies,
		Prescriptions: s.prescriptions,
		Consultations: s.consultations,
		Agenda:        s.agenda,
	}, logger)
}

func (s *services) importer(logger zerolog.Logger) *importer.Importer {
	return importer.New(s.accounts, s.supplies, logger)
}
