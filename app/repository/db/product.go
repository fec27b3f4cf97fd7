package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"inventory-automation/app/domain"
	"inventory-automation/pkg"

	"github.com/shopspring/decimal"
)

const productColumns = `id, name, sku, stock, price, active, in_stock, on_sale, created_at, updated_at`

type productRepository struct {
	conn *sql.DB
}

func NewProductRepository(db *sql.DB) domain.ProductRepository {
	return &productRepository{db}
}

func scanProduct(row interface{ Scan(...any) error }, p *domain.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.SKU, &p.Stock, &p.Price, &p.Active, &p.InStock, &p.OnSale,
		&p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var product domain.Product
	if err := scanProduct(r.conn.QueryRowContext(ctx, query, id), &product); err != nil {
		slog.ErrorContext(ctx, "[productRepository] GetByID", "queryRowContext", err)
		if errors.Is(err, sql.ErrNoRows) {
			return product, domain.ErrNotFound
		}
		return product, err
	}

	return product, nil
}

func (r *productRepository) GetList(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1 = 1`
	if filter.ActiveOnly {
		query += ` AND active = TRUE`
	}
	if filter.InStockOnly {
		query += ` AND in_stock = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] GetList", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := scanProduct(rows, &product); err != nil {
			slog.ErrorContext(ctx, "[productRepository] GetList", "scan", err)
			return nil, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[productRepository] GetList", "rowError", err)
		return nil, err
	}

	return products, nil
}

func (r *productRepository) LockForUpdate(ctx context.Context, id int64, tx *sql.Tx) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	var product domain.Product
	if err := scanProduct(use(r.conn, tx).QueryRowContext(ctx, query, id), &product); err != nil {
		slog.ErrorContext(ctx, "[productRepository] LockForUpdate", "queryRowContext", err)
		if errors.Is(err, sql.ErrNoRows) {
			return product, domain.ErrNotFound
		}
		return product, err
	}

	return product, nil
}

func (r *productRepository) UpdateStock(ctx context.Context, id, stock int64, tx *sql.Tx) error {
	query := `UPDATE products SET stock = $1, in_stock = $1 > 0, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, "UpdateStock", tx, query, stock, id)
}

func (r *productRepository) UpdatePricing(ctx context.Context, id int64, price decimal.Decimal, onSale bool, tx *sql.Tx) error {
	query := `UPDATE products SET price = $1, on_sale = $2, updated_at = NOW() WHERE id = $3`
	return r.exec(ctx, "UpdatePricing", tx, query, price, onSale, id)
}

func (r *productRepository) Deactivate(ctx context.Context, id int64, tx *sql.Tx) error {
	query := `UPDATE products SET active = FALSE, in_stock = FALSE, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, "Deactivate", tx, query, id)
}

func (r *productRepository) exec(ctx context.Context, op string, tx *sql.Tx, query string, args ...any) error {
	res, err := use(r.conn, tx).ExecContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] "+op, "execContext", err)
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] "+op, "rowsAffected", err)
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *productRepository) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	return pkg.WithTransaction(ctx, r.conn, fn)
}
