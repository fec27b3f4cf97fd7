package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"inventory-automation/app/domain"
)

const reorderTaskColumns = `id, product_id, supplier_id, quantity, status, reason, reorder_point, expected_at,
	ordered_at, received_at, cost, notes, created_at, updated_at`

type reorderTaskRepository struct {
	conn *sql.DB
}

func NewReorderTaskRepository(db *sql.DB) domain.ReorderTaskRepository {
	return &reorderTaskRepository{db}
}

func scanReorderTask(row interface{ Scan(...any) error }, t *domain.ReorderTask) error {
	return row.Scan(&t.ID, &t.ProductID, &t.SupplierID, &t.Quantity, &t.Status, &t.Reason, &t.ReorderPoint,
		&t.ExpectedAt, &t.OrderedAt, &t.ReceivedAt, &t.Cost, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
}

// Create relies on the partial unique index over open tasks; a concurrent
// insert for the same product surfaces as ErrReorderInFlight.
func (r *reorderTaskRepository) Create(ctx context.Context, task *domain.ReorderTask, tx *sql.Tx) error {
	query := `INSERT INTO reorder_tasks (product_id, supplier_id, quantity, status, reason, reorder_point,
		expected_at, cost, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, created_at, updated_at`

	err := use(r.conn, tx).QueryRowContext(ctx, query, task.ProductID, task.SupplierID, task.Quantity, task.Status,
		task.Reason, task.ReorderPoint, task.ExpectedAt, task.Cost, task.Notes).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[reorderTaskRepository] Create", "queryRowContext", err)
		if isUniqueViolation(err) {
			return domain.ErrReorderInFlight
		}
		return err
	}

	return nil
}

func (r *reorderTaskRepository) GetByID(ctx context.Context, id int64) (domain.ReorderTask, error) {
	query := `SELECT ` + reorderTaskColumns + ` FROM reorder_tasks WHERE id = $1`

	var task domain.ReorderTask
	if err := scanReorderTask(r.conn.QueryRowContext(ctx, query, id), &task); err != nil {
		slog.ErrorContext(ctx, "[reorderTaskRepository] GetByID", "queryRowContext", err)
		if errors.Is(err, sql.ErrNoRows) {
			return task, domain.ErrNotFound
		}
		return task, err
	}

	return task, nil
}

func (r *reorderTaskRepository) LockForUpdate(ctx context.Context, id int64, tx *sql.Tx) (domain.ReorderTask, error) {
	query := `SELECT ` + reorderTaskColumns + ` FROM reorder_tasks WHERE id = $1 FOR UPDATE`

	var task domain.ReorderTask
	if err := scanReorderTask(use(r.conn, tx).QueryRowContext(ctx, query, id), &task); err != nil {
		slog.ErrorContext(ctx, "[reorderTaskRepository] LockForUpdate", "queryRowContext", err)
		if errors.Is(err, sql.ErrNoRows) {
			return task, domain.ErrNotFound
		}
		return task, err
	}

	return task, nil
}

func (r *reorderTaskRepository) HasOpenTask(ctx context.Context, productID int64, tx *sql.Tx) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM reorder_tasks WHERE product_id = $1 AND status IN ('PENDING', 'ORDERED')
	)`

	var exists bool
	if err := use(r.conn, tx).QueryRowContext(ctx, query, productID).Scan(&exists); err != nil {
		slog.ErrorContext(ctx, "[reorderTaskRepository] HasOpenTask", "queryRowContext", err)
		return false, err
	}

	return exists, nil
}

func (r *reorderTaskRepository) Update(ctx context.Context, task domain.ReorderTask, tx *sql.Tx) error {
	query := `UPDATE reorder_tasks
	SET status = $1, ordered_at = $2, received_at = $3, notes = $4, updated_at = NOW()
	WHERE id = $5`

	res, err := use(r.conn, tx).ExecContext(ctx, query, task.Status, task.OrderedAt, task.ReceivedAt, task.Notes, task.ID)
	if err != nil {
		slog.ErrorContext(ctx, "[reorderTaskRepository] Update", "execContext", err)
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		slog.ErrorContext(ctx, "[reorderTaskRepository] Update", "rowsAffected", err)
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *reorderTaskRepository) GetList(ctx context.Context, filter domain.ReorderTaskFilter) ([]domain.ReorderTask, error) {
	query := `SELECT ` + reorderTaskColumns + ` FROM reorder_tasks WHERE 1 = 1`

	args := []any{}
	placeholder := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", placeholder)
		args = append(args, filter.Status)
		placeholder++
	}
	if filter.ProductID != 0 {
		query += fmt.Sprintf(" AND product_id = $%d", placeholder)
		args = append(args, filter.ProductID)
		placeholder++
	}
	if filter.SupplierID != 0 {
		query += fmt.Sprintf(" AND supplier_id = $%d", placeholder)
		args = append(args, filter.SupplierID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "[reorderTaskRepository] GetList", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.ReorderTask
	for rows.Next() {
		var task domain.ReorderTask
		if err := scanReorderTask(rows, &task); err != nil {
			slog.ErrorContext(ctx, "[reorderTaskRepository] GetList", "scan", err)
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[reorderTaskRepository] GetList", "rowError", err)
		return nil, err
	}

	return tasks, nil
}

func (r *reorderTaskRepository) GetStats(ctx context.Context) (domain.ReorderStats, error) {
	query := `SELECT
		COUNT(*) FILTER (WHERE status = 'PENDING'),
		COUNT(*) FILTER (WHERE status = 'ORDERED'),
		COUNT(*) FILTER (WHERE status = 'RECEIVED'),
		COUNT(*) FILTER (WHERE status = 'CANCELLED'),
		COUNT(*),
		COALESCE(SUM(cost) FILTER (WHERE status IN ('PENDING', 'ORDERED')), 0)
	FROM reorder_tasks`

	var stats domain.ReorderStats
	err := r.conn.QueryRowContext(ctx, query).Scan(&stats.Pending, &stats.Ordered, &stats.Received,
		&stats.Cancelled, &stats.Total, &stats.TotalPendingCost)
	if err != nil {
		slog.ErrorContext(ctx, "[reorderTaskRepository] GetStats", "queryRowContext", err)
		return stats, err
	}

	return stats, nil
}
