package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pribylovaa/school-admin/internal/storage/postgres"
)

// migrateFunc — одна операция goose над открытой БД.
type migrateFunc func(ctx context.Context, db *sql.DB) error

func newMigrateCommand() *cobra.Command {
	var dbURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&dbURL, "db-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string (default $DATABASE_URL)")

	cmd.AddCommand(newMigrateSubcommand("up", "Apply all pending migrations", &dbURL, postgres.MigrateUp))
	cmd.AddCommand(newMigrateSubcommand("down", "Roll back the latest migration", &dbURL, postgres.MigrateDown))
	cmd.AddCommand(newMigrateSubcommand("status", "Print migration status", &dbURL, postgres.MigrationStatus))
	return cmd
}

func newMigrateSubcommand(use, short string, dbURL *string, fn migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runMigration(ctx, *dbURL, fn)
		},
	}
}

func runMigration(ctx context.Context, dbURL string, fn migrateFunc) error {
	if dbURL == "" {
		return errors.New("database url is required (--db-url or DATABASE_URL)")
	}

	db, err := goose.OpenDBWithDriver("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	return fn(ctx, db)
}
