package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"inventory-automation/pkg"
)

const schemaMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    VARCHAR(255) PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrate applies every *.sql file of fsys in lexical order, each in its own
// transaction, skipping versions already recorded in schema_migrations.
func Migrate(ctx context.Context, conn *sql.DB, fsys fs.FS) (int, error) {
	if _, err := conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		slog.ErrorContext(ctx, "[Migrate] schema_migrations", "execContext", err)
		return 0, err
	}

	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return 0, err
	}
	sort.Strings(files)

	applied := 0
	for _, file := range files {
		version := path.Base(file)

		var exists bool
		err := conn.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
		if err != nil {
			slog.ErrorContext(ctx, "[Migrate] "+version, "queryRowContext", err)
			return applied, err
		}
		if exists {
			continue
		}

		script, err := fs.ReadFile(fsys, file)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", file, err)
		}

		err = pkg.WithTransaction(ctx, conn, func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(script)); err != nil {
				return fmt.Errorf("apply %s: %w", version, err)
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
			return err
		})
		if err != nil {
			slog.ErrorContext(ctx, "[Migrate] "+version, "withTransaction", err)
			return applied, err
		}

		slog.InfoContext(ctx, "[Migrate] applied", "version", version)
		applied++
	}

	return applied, nil
}
