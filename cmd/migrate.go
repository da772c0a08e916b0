package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/beka-birhanu/quill-api/config"
	"github.com/beka-birhanu/quill-api/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"
)

const defaultMigrationsCollection = "schema_migrations"

type migrateConfig struct {
	DatabaseURL          string
	MigrationsCollection string
}

func init() {
	rootCmd.AddCommand(newMigrateCommand())
}

func newMigrateCommand() *cobra.Command {
	cfg := migrateConfig{MigrationsCollection: defaultMigrationsCollection}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back document store indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	migrateCmd.PersistentFlags().StringVar(&cfg.DatabaseURL, "database-url", "", "MongoDB URL including the database name. Can also be set via QUILL_MIGRATE_DATABASE_URL, otherwise built from the DB_* variables.")
	migrateCmd.PersistentFlags().StringVar(&cfg.MigrationsCollection, "migrations-collection", cfg.MigrationsCollection, "Collection recording the applied version.")

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up [steps]",
		Short: "Apply pending migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, hasSteps, err := parseMigrationStepsArg(args)
			if err != nil {
				return err
			}

			runner, err := newMigrationRunner(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := closeMigrationRunner(runner); closeErr != nil {
					cmd.PrintErrf("warning: failed to close migration runner cleanly: %v\n", closeErr)
				}
			}()

			if hasSteps {
				err = runner.Steps(steps)
			} else {
				err = runner.Up()
			}

			if err != nil {
				if isNoChangeBoundaryError(err) {
					cmd.Println("No changes to apply.")
					return nil
				}

				var shortLimit migrate.ErrShortLimit
				if hasSteps && errors.As(err, &shortLimit) {
					applied := steps - int(shortLimit.Short)
					if applied <= 0 {
						cmd.Println("No changes to apply.")
						return nil
					}
					cmd.Printf("Applied %d migration step(s) (requested %d, reached the last migration)\n", applied, steps)
					return nil
				}

				return fmt.Errorf("apply migrations: %w", err)
			}

			if hasSteps {
				cmd.Printf("Applied %d migration step(s)\n", steps)
				return nil
			}
			cmd.Println("Applied all pending migrations")
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down <steps>",
		Short: "Roll back migrations by step count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _, err := parseMigrationStepsArg(args)
			if err != nil {
				return err
			}

			runner, err := newMigrationRunner(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := closeMigrationRunner(runner); closeErr != nil {
					cmd.PrintErrf("warning: failed to close migration runner cleanly: %v\n", closeErr)
				}
			}()

			if err := runner.Steps(-steps); err != nil {
				if isNoChangeBoundaryError(err) {
					cmd.Println("No changes to roll back.")
					return nil
				}

				var shortLimit migrate.ErrShortLimit
				if errors.As(err, &shortLimit) {
					rolledBack := steps - int(shortLimit.Short)
					if rolledBack <= 0 {
						cmd.Println("No changes to roll back.")
						return nil
					}
					cmd.Printf("Rolled back %d migration step(s) (requested %d, reached the first migration)\n", rolledBack, steps)
					return nil
				}

				return fmt.Errorf("rollback migrations: %w", err)
			}

			cmd.Printf("Rolled back %d migration step(s)\n", steps)
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newMigrationRunner(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := closeMigrationRunner(runner); closeErr != nil {
					cmd.PrintErrf("warning: failed to close migration runner cleanly: %v\n", closeErr)
				}
			}()

			version, dirty, err := runner.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				cmd.Println("No migrations applied.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read migration version: %w", err)
			}
			if dirty {
				cmd.Printf("%d (dirty)\n", version)
				return nil
			}
			cmd.Printf("%d\n", version)
			return nil
		},
	})

	return migrateCmd
}

// resolveDatabaseURL prefers the flag, then QUILL_MIGRATE_DATABASE_URL, then
// the URL the server itself would use.
func resolveDatabaseURL(flagValue string, load func() (*config.Config, error)) (string, error) {
	databaseURL := strings.TrimSpace(flagValue)
	if databaseURL == "" {
		databaseURL = strings.TrimSpace(os.Getenv("QUILL_MIGRATE_DATABASE_URL"))
	}
	if databaseURL != "" {
		return databaseURL, nil
	}

	cfg, err := load()
	if err != nil {
		return "", fmt.Errorf("missing database URL: set --database-url or QUILL_MIGRATE_DATABASE_URL: %w", err)
	}
	return cfg.MongoDatabaseURI(), nil
}

func applyMigrationsCollection(databaseURL, collection string) (string, error) {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return databaseURL, nil
	}

	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	if parsed.Path == "" || parsed.Path == "/" {
		return "", errors.New("database url must name the database, e.g. mongodb://host:27017/quill")
	}

	query := parsed.Query()
	if strings.TrimSpace(query.Get("x-migrations-collection")) != "" {
		return databaseURL, nil
	}
	query.Set("x-migrations-collection", collection)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func parseMigrationStepsArg(args []string) (int, bool, error) {
	if len(args) == 0 {
		return 0, false, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || steps <= 0 {
		return 0, false, fmt.Errorf("invalid migration steps %q: expected a positive integer", args[0])
	}
	return steps, true, nil
}

func newMigrationRunner(cfg migrateConfig) (*migrate.Migrate, error) {
	databaseURL, err := resolveDatabaseURL(cfg.DatabaseURL, config.Load)
	if err != nil {
		return nil, err
	}
	databaseURL, err = applyMigrationsCollection(databaseURL, cfg.MigrationsCollection)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	runner, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("create migrate runner: %w", err)
	}
	return runner, nil
}

func closeMigrationRunner(runner *migrate.Migrate) error {
	if runner == nil {
		return nil
	}
	sourceErr, databaseErr := runner.Close()
	return errors.Join(sourceErr, databaseErr)
}

func isNoChangeBoundaryError(err error) bool {
	return errors.Is(err, migrate.ErrNoChange) || errors.Is(err, os.ErrNotExist)
}
