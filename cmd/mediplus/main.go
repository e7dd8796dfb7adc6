package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mediplus/clinic/internal/console"
	"github.com/mediplus/clinic/internal/importer"
	"github.com/mediplus/clinic/internal/platform/db"
	"github.com/mediplus/clinic/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "mediplus",
		Short:         "MediPlus clinic terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerminal(cmd, configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Additional config file (YAML, TOML or JSON)")

	root.AddCommand(runCmd(&configFile))
	root.AddCommand(migrateCmd(&configFile))
	root.AddCommand(importCmd(&configFile))
	root.AddCommand(seedCmd())
	root.AddCommand(dbCmd(&configFile))
	return root
}

func runCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerminal(cmd, *configFile)
		},
	}
}

// runTerminal serves menus on the command's input and output. Logs go to the
// error stream so they do not interleave with the menus.
func runTerminal(cmd *cobra.Command, configFile string) error {
	ctx := cmd.Context()
	a, err := connect(ctx, configFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.AutoMigrate {
		if err := a.migrate(ctx); err != nil {
			return err
		}
	}

	svc, err := a.services()
	if err != nil {
		return err
	}
	term := console.New(svc.router(a.logger), cmd.InOrStdin(), cmd.OutOrStdout(), console.Options{
		Importer: svc.importer(a.logger),
		DataDir:  a.cfg.DataDir,
	}, a.logger)
	return term.Run(ctx)
}

func migrateCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Create the schema if needed and apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := connect(ctx, *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running migrations on schema: %s\n", a.cfg.DBSchema)
			count, err := db.EnsureSchema(ctx, a.pool, a.cfg.DBSchema, migrationFiles(a.cfg.MigrationsDir))
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(out, "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := connect(ctx, *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			migrator := db.NewMigrator(a.pool, migrationFiles(a.cfg.MigrationsDir), a.cfg.DBSchema)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Migration status for schema: %s\n", a.cfg.DBSchema)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Version, s.Name, status, appliedAt)
			}
			return w.Flush()
		},
	})

	return cmd
}

func importCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-load accounts or supplies from a JSON file",
	}

	add := func(use, short string, load func(ctx context.Context, im *importer.Importer, f *os.File) (importer.Report, error)) {
		cmd.AddCommand(&cobra.Command{
			Use:   use + " <file>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				ctx := cmd.Context()
				a, err := connect(ctx, *configFile, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer a.Close()
				if a.cfg.AutoMigrate {
					if err := a.migrate(ctx); err != nil {
						return err
					}
				}
				svc, err := a.services()
				if err != nil {
					return err
				}

				rep, err := load(ctx, svc.importer(a.logger), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", filepath.Base(args[0]), rep)
				return nil
			},
		})
	}

	add("accounts", "Load role-discriminated accounts", func(ctx context.Context, im *importer.Importer, f *os.File) (importer.Report, error) {
		return im.LoadAccounts(ctx, f)
	})
	add("directory", "Load a public user directory, rotating roles", func(ctx context.Context, im *importer.Importer, f *os.File) (importer.Report, error) {
		return im.LoadDirectory(ctx, f)
	})
	add("supplies", "Load supplies", func(ctx context.Context, im *importer.Importer, f *os.File) (importer.Report, error) {
		return im.LoadSupplies(ctx, f)
	})
	return cmd
}

func seedCmd() *cobra.Command {
	var (
		opts        seed.Options
		out         string
		supplies    int
		suppliesOut string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write synthetic import files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if supplies > 0 && suppliesOut == "" {
				return fmt.Errorf("--supplies-out is required with --supplies")
			}
			if err := writeFile(out, func(f *os.File) error { return seed.Generate(f, opts) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d accounts to %s\n", opts.Patients+opts.Doctors+opts.Admins, out)

			if supplies > 0 {
				if err := writeFile(suppliesOut, func(f *os.File) error { return seed.GenerateSupplies(f, supplies, opts.Seed) }); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d supplies to %s\n", supplies, suppliesOut)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Patients, "patients", 10, "Number of patients")
	cmd.Flags().IntVar(&opts.Doctors, "doctors", 3, "Number of doctors")
	cmd.Flags().IntVar(&opts.Admins, "admins", 1, "Number of administrators")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed, 0 for a random one")
	cmd.Flags().StringVar(&out, "out", filepath.Join("datos", console.AccountsFile), "Accounts file to write")
	cmd.Flags().IntVar(&supplies, "supplies", 0, "Number of supplies")
	cmd.Flags().StringVar(&suppliesOut, "supplies-out", "", "Supplies file to write")
	return cmd
}

func writeFile(path string, write func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func dbCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Ping the database and print pool statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := connect(cmd.Context(), *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := db.Check(cmd.Context(), a.pool, a.cfg.DBSchema)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(status); encErr != nil {
				return encErr
			}
			return err
		},
	})
	return cmd
}
