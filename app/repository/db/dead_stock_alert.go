package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"inventory-automation/app/domain"
)

const deadStockAlertColumns = `id, product_id, days_without_sale, last_sale_date, current_stock, estimated_value,
	status, action, action_at, notes, created_at, updated_at`

type deadStockAlertRepository struct {
	conn *sql.DB
}

func NewDeadStockAlertRepository(db *sql.DB) domain.DeadStockAlertRepository {
	return &deadStockAlertRepository{db}
}

func scanDeadStockAlert(row interface{ Scan(...any) error }, a *domain.DeadStockAlert) error {
	return row.Scan(&a.ID, &a.ProductID, &a.DaysWithoutSale, &a.LastSaleDate, &a.CurrentStock, &a.EstimatedValue,
		&a.Status, &a.Action, &a.ActionAt, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
}

func (r *deadStockAlertRepository) Create(ctx context.Context, alert *domain.DeadStockAlert, tx *sql.Tx) error {
	query := `INSERT INTO dead_stock_alerts (product_id, days_without_sale, last_sale_date, current_stock,
		estimated_value, status, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at, updated_at`

	err := use(r.conn, tx).QueryRowContext(ctx, query, alert.ProductID, alert.DaysWithoutSale, alert.LastSaleDate,
		alert.CurrentStock, alert.EstimatedValue, alert.Status, alert.Notes).
		Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockAlertRepository] Create", "queryRowContext", err)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: alert for product %d already exists", domain.ErrConflict, alert.ProductID)
		}
		return err
	}

	return nil
}

func (r *deadStockAlertRepository) GetByID(ctx context.Context, id int64) (domain.DeadStockAlert, error) {
	query := `SELECT ` + deadStockAlertColumns + ` FROM dead_stock_alerts WHERE id = $1`
	return r.getOne(ctx, "GetByID", r.conn, query, id)
}

func (r *deadStockAlertRepository) LockForUpdate(ctx context.Context, id int64, tx *sql.Tx) (domain.DeadStockAlert, error) {
	query := `SELECT ` + deadStockAlertColumns + ` FROM dead_stock_alerts WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "LockForUpdate", use(r.conn, tx), query, id)
}

func (r *deadStockAlertRepository) LockByProductID(ctx context.Context, productID int64, tx *sql.Tx) (domain.DeadStockAlert, error) {
	query := `SELECT ` + deadStockAlertColumns + ` FROM dead_stock_alerts WHERE product_id = $1 FOR UPDATE`
	return r.getOne(ctx, "LockByProductID", use(r.conn, tx), query, productID)
}

func (r *deadStockAlertRepository) getOne(ctx context.Context, op string, q querier, query string, arg int64) (domain.DeadStockAlert, error) {
	var alert domain.DeadStockAlert
	if err := scanDeadStockAlert(q.QueryRowContext(ctx, query, arg), &alert); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return alert, domain.ErrNotFound
		}
		slog.ErrorContext(ctx, "[deadStockAlertRepository] "+op, "queryRowContext", err)
		return alert, err
	}

	return alert, nil
}

func (r *deadStockAlertRepository) UpdateDetection(ctx context.Context, alert domain.DeadStockAlert, tx *sql.Tx) error {
	query := `UPDATE dead_stock_alerts
	SET days_without_sale = $1, last_sale_date = $2, current_stock = $3, estimated_value = $4, updated_at = NOW()
	WHERE id = $5`

	return r.exec(ctx, "UpdateDetection", tx, query, alert.DaysWithoutSale, alert.LastSaleDate, alert.CurrentStock,
		alert.EstimatedValue, alert.ID)
}

func (r *deadStockAlertRepository) UpdateReview(ctx context.Context, alert domain.DeadStockAlert, tx *sql.Tx) error {
	query := `UPDATE dead_stock_alerts
	SET status = $1, action = $2, action_at = $3, notes = $4, updated_at = NOW()
	WHERE id = $5`

	return r.exec(ctx, "UpdateReview", tx, query, alert.Status, alert.Action, alert.ActionAt, alert.Notes, alert.ID)
}

func (r *deadStockAlertRepository) exec(ctx context.Context, op string, tx *sql.Tx, query string, args ...any) error {
	res, err := use(r.conn, tx).ExecContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockAlertRepository] "+op, "execContext", err)
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockAlertRepository] "+op, "rowsAffected", err)
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *deadStockAlertRepository) ArchiveReviewed(ctx context.Context) (int64, error) {
	query := `UPDATE dead_stock_alerts SET status = 'ARCHIVED', updated_at = NOW() WHERE status = 'REVIEWED'`

	res, err := r.conn.ExecContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockAlertRepository] ArchiveReviewed", "execContext", err)
		return 0, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockAlertRepository] ArchiveReviewed", "rowsAffected", err)
		return 0, err
	}

	slog.InfoContext(ctx, "[deadStockAlertRepository] ArchiveReviewed", "rowsAffected", rowsAffected)
	return rowsAffected, nil
}

func (r *deadStockAlertRepository) GetList(ctx context.Context, filter domain.DeadStockFilter) ([]domain.DeadStockAlert, error) {
	query := `SELECT ` + deadStockAlertColumns + ` FROM dead_stock_alerts WHERE 1 = 1`

	args := []any{}
	placeholder := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", placeholder)
		args = append(args, filter.Status)
		placeholder++
	}
	if filter.MinDaysWithoutSale > 0 {
		query += fmt.Sprintf(" AND days_without_sale >= $%d", placeholder)
		args = append(args, filter.MinDaysWithoutSale)
		placeholder++
	}
	if filter.MinCurrentStock > 0 {
		query += fmt.Sprintf(" AND current_stock >= $%d", placeholder)
		args = append(args, filter.MinCurrentStock)
		placeholder++
	}
	if filter.MinEstimatedValue > 0 {
		query += fmt.Sprintf(" AND estimated_value >= $%d", placeholder)
		args = append(args, filter.MinEstimatedValue)
	}
	query += " ORDER BY estimated_value DESC, id"

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockAlertRepository] GetList", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.DeadStockAlert
	for rows.Next() {
		var alert domain.DeadStockAlert
		if err := scanDeadStockAlert(rows, &alert); err != nil {
			slog.ErrorContext(ctx, "[deadStockAlertRepository] GetList", "scan", err)
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[deadStockAlertRepository] GetList", "rowError", err)
		return nil, err
	}

	return alerts, nil
}

func (r *deadStockAlertRepository) GetStats(ctx context.Context) (domain.DeadStockStats, error) {
	query := `SELECT
		COUNT(*) FILTER (WHERE status = 'ACTIVE'),
		COUNT(*) FILTER (WHERE status = 'REVIEWED'),
		COUNT(*) FILTER (WHERE status = 'ARCHIVED'),
		COUNT(*) FILTER (WHERE status = 'DELISTED'),
		COUNT(*),
		COALESCE(SUM(estimated_value), 0)
	FROM dead_stock_alerts`

	var stats domain.DeadStockStats
	err := r.conn.QueryRowContext(ctx, query).Scan(&stats.Active, &stats.Reviewed, &stats.Archived,
		&stats.Delisted, &stats.Total, &stats.TotalEstimatedValue)
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockAlertRepository] GetStats", "queryRowContext", err)
		return stats, err
	}

	return stats, nil
}
