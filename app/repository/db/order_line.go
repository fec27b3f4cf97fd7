package db

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"inventory-automation/app/domain"
)

type orderLineRepository struct {
	conn *sql.DB
}

func NewOrderLineRepository(db *sql.DB) domain.OrderLineRepository {
	return &orderLineRepository{db}
}

func (r *orderLineRepository) GetByProductIDSince(ctx context.Context, productID int64, since time.Time) ([]domain.OrderLine, error) {
	query := `SELECT id, product_id, quantity, price, created_at
	FROM order_items
	WHERE product_id = $1 AND created_at >= $2
	ORDER BY created_at`

	rows, err := r.conn.QueryContext(ctx, query, productID, since)
	if err != nil {
		slog.ErrorContext(ctx, "[orderLineRepository] GetByProductIDSince", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.ProductID, &line.Quantity, &line.Price, &line.CreatedAt); err != nil {
			slog.ErrorContext(ctx, "[orderLineRepository] GetByProductIDSince", "scan", err)
			return nil, err
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[orderLineRepository] GetByProductIDSince", "rowError", err)
		return nil, err
	}

	return lines, nil
}

// GetLastSaleDate returns nil when the product never sold.
func (r *orderLineRepository) GetLastSaleDate(ctx context.Context, productID int64) (*time.Time, error) {
	query := `SELECT MAX(created_at) FROM order_items WHERE product_id = $1`

	var last sql.NullTime
	if err := r.conn.QueryRowContext(ctx, query, productID).Scan(&last); err != nil {
		slog.ErrorContext(ctx, "[orderLineRepository] GetLastSaleDate", "queryRowContext", err)
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}

	return &last.Time, nil
}
