package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"inventory-automation/app/domain"
)

type salesVelocityRepository struct {
	conn *sql.DB
}

func NewSalesVelocityRepository(db *sql.DB) domain.SalesVelocityRepository {
	return &salesVelocityRepository{db}
}

// Upsert replaces the whole row in one statement, so a failed recompute
// never leaves a partially written velocity behind.
func (r *salesVelocityRepository) Upsert(ctx context.Context, v *domain.SalesVelocity) error {
	query := `INSERT INTO sales_velocities (product_id, daily, weekly, monthly, demand_std_dev, data_points, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (product_id) DO UPDATE SET
		daily = EXCLUDED.daily,
		weekly = EXCLUDED.weekly,
		monthly = EXCLUDED.monthly,
		demand_std_dev = EXCLUDED.demand_std_dev,
		data_points = EXCLUDED.data_points,
		updated_at = EXCLUDED.updated_at`

	if _, err := r.conn.ExecContext(ctx, query, v.ProductID, v.Daily, v.Weekly, v.Monthly,
		v.VarianceDailyDemand, v.DataPoints, v.UpdatedAt); err != nil {
		slog.ErrorContext(ctx, "[salesVelocityRepository] Upsert", "execContext", err)
		return err
	}

	return nil
}

func (r *salesVelocityRepository) GetByProductID(ctx context.Context, productID int64) (domain.SalesVelocity, error) {
	query := `SELECT product_id, daily, weekly, monthly, demand_std_dev, data_points, updated_at
	FROM sales_velocities WHERE product_id = $1`

	var v domain.SalesVelocity
	err := r.conn.QueryRowContext(ctx, query, productID).Scan(&v.ProductID, &v.Daily, &v.Weekly, &v.Monthly,
		&v.VarianceDailyDemand, &v.DataPoints, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, domain.ErrNotFound
		}
		slog.ErrorContext(ctx, "[salesVelocityRepository] GetByProductID", "queryRowContext", err)
		return v, err
	}

	return v, nil
}

func (r *salesVelocityRepository) GetTop(ctx context.Context, limit int64) ([]domain.SalesVelocity, error) {
	query := `SELECT product_id, daily, weekly, monthly, demand_std_dev, data_points, updated_at
	FROM sales_velocities
	ORDER BY daily DESC
	LIMIT $1`

	rows, err := r.conn.QueryContext(ctx, query, limit)
	if err != nil {
		slog.ErrorContext(ctx, "[salesVelocityRepository] GetTop", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var velocities []domain.SalesVelocity
	for rows.Next() {
		var v domain.SalesVelocity
		if err := rows.Scan(&v.ProductID, &v.Daily, &v.Weekly, &v.Monthly, &v.VarianceDailyDemand,
			&v.DataPoints, &v.UpdatedAt); err != nil {
			slog.ErrorContext(ctx, "[salesVelocityRepository] GetTop", "scan", err)
			return nil, err
		}
		velocities = append(velocities, v)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[salesVelocityRepository] GetTop", "rowError", err)
		return nil, err
	}

	return velocities, nil
}
