package db

import (
	"context"
	"database/sql"
	"log/slog"

	"inventory-automation/app/domain"
)

type supplierRepository struct {
	conn *sql.DB
}

func NewSupplierRepository(db *sql.DB) domain.SupplierRepository {
	return &supplierRepository{db}
}

func (r *supplierRepository) GetProductSuppliers(ctx context.Context, productID int64) ([]domain.ProductSupplier, error) {
	query := `SELECT ps.product_id, ps.supplier_id, COALESCE(ps.lead_time, 0), ps.cost, ps.preferred,
		s.id, s.name, s.lead_time
	FROM product_suppliers ps
	JOIN suppliers s ON s.id = ps.supplier_id
	WHERE ps.product_id = $1
	ORDER BY ps.preferred DESC, ps.supplier_id`

	rows, err := r.conn.QueryContext(ctx, query, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[supplierRepository] GetProductSuppliers", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var links []domain.ProductSupplier
	for rows.Next() {
		var link domain.ProductSupplier
		if err := rows.Scan(&link.ProductID, &link.SupplierID, &link.LeadTime, &link.Cost, &link.Preferred,
			&link.Supplier.ID, &link.Supplier.Name, &link.Supplier.LeadTime); err != nil {
			slog.ErrorContext(ctx, "[supplierRepository] GetProductSuppliers", "scan", err)
			return nil, err
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[supplierRepository] GetProductSuppliers", "rowError", err)
		return nil, err
	}

	return links, nil
}
