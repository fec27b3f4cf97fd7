package pkg

import (
	"context"
	"database/sql"
	"log/slog"
)

// WithTransaction runs fn inside a transaction on conn, rolling back on error.
func WithTransaction(ctx context.Context, conn *sql.DB, fn func(context.Context, *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "[pkg] WithTransaction", "beginTx", err)
		return err
	}

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			slog.ErrorContext(ctx, "[pkg] WithTransaction", "rollback", rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.ErrorContext(ctx, "[pkg] WithTransaction", "commit", err)
		return err
	}

	return nil
}
