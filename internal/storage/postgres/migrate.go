package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pribylovaa/school-admin/migrations"
)

// Точки подмены goose для тестов.
var (
	gooseUpContext     = goose.UpContext
	gooseDownContext   = goose.DownContext
	gooseStatusContext = goose.StatusContext
)

func setupGoose() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("pgx")
}

// Migrate применяет все встроенные миграции через пул хранилища.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	db := stdlib.OpenDBFromPool(s.db)
	defer db.Close()

	if err := MigrateUp(ctx, db); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MigrateUp применяет все неприменённые миграции.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	return gooseUpContext(ctx, db, ".")
}

// MigrateDown откатывает последнюю применённую миграцию.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	return gooseDownContext(ctx, db, ".")
}

// MigrationStatus печатает состояние миграций через логгер goose.
func MigrationStatus(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	return gooseStatusContext(ctx, db, ".")
}
