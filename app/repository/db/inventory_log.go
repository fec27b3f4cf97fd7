package db

import (
	"context"
	"database/sql"
	"log/slog"

	"inventory-automation/app/domain"
)

type inventoryLogRepository struct {
	conn *sql.DB
}

func NewInventoryLogRepository(db *sql.DB) domain.InventoryLogRepository {
	return &inventoryLogRepository{db}
}

func (r *inventoryLogRepository) Create(ctx context.Context, log *domain.InventoryLog, tx *sql.Tx) error {
	query := `INSERT INTO inventory_logs (product_id, previous_stock, new_stock, change, reason)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at`

	err := use(r.conn, tx).QueryRowContext(ctx, query, log.ProductID, log.PreviousStock, log.NewStock,
		log.Change, log.Reason).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[inventoryLogRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}
