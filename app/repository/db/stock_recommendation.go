package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"inventory-automation/app/domain"
)

const recommendationColumns = `product_id, min_stock, max_stock, safety_stock, reorder_point,
	forecasted_velocity, confidence, lead_time_days, applied_at, created_at, updated_at`

type stockRecommendationRepository struct {
	conn *sql.DB
}

func NewStockRecommendationRepository(db *sql.DB) domain.StockRecommendationRepository {
	return &stockRecommendationRepository{db}
}

func scanRecommendation(row interface{ Scan(...any) error }, rec *domain.StockRecommendation) error {
	return row.Scan(&rec.ProductID, &rec.MinStock, &rec.MaxStock, &rec.SafetyStock, &rec.ReorderPoint,
		&rec.ForecastedVelocity, &rec.Confidence, &rec.LeadTimeDays, &rec.AppliedAt, &rec.CreatedAt, &rec.UpdatedAt)
}

// Upsert keeps applied_at and created_at of an existing row. The returned
// flag is true when the row was inserted.
func (r *stockRecommendationRepository) Upsert(ctx context.Context, rec *domain.StockRecommendation) (bool, error) {
	query := `INSERT INTO stock_recommendations (product_id, min_stock, max_stock, safety_stock, reorder_point,
		forecasted_velocity, confidence, lead_time_days)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (product_id) DO UPDATE SET
		min_stock = EXCLUDED.min_stock,
		max_stock = EXCLUDED.max_stock,
		safety_stock = EXCLUDED.safety_stock,
		reorder_point = EXCLUDED.reorder_point,
		forecasted_velocity = EXCLUDED.forecasted_velocity,
		confidence = EXCLUDED.confidence,
		lead_time_days = EXCLUDED.lead_time_days,
		updated_at = NOW()
	RETURNING applied_at, created_at, updated_at, (xmax = 0) AS inserted`

	var inserted bool
	err := r.conn.QueryRowContext(ctx, query, rec.ProductID, rec.MinStock, rec.MaxStock, rec.SafetyStock,
		rec.ReorderPoint, rec.ForecastedVelocity, rec.Confidence, rec.LeadTimeDays).
		Scan(&rec.AppliedAt, &rec.CreatedAt, &rec.UpdatedAt, &inserted)
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationRepository] Upsert", "queryRowContext", err)
		return false, err
	}

	return inserted, nil
}

func (r *stockRecommendationRepository) GetByProductID(ctx context.Context, productID int64) (domain.StockRecommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM stock_recommendations WHERE product_id = $1`

	var rec domain.StockRecommendation
	if err := scanRecommendation(r.conn.QueryRowContext(ctx, query, productID), &rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, domain.ErrNotFound
		}
		slog.ErrorContext(ctx, "[stockRecommendationRepository] GetByProductID", "queryRowContext", err)
		return rec, err
	}

	return rec, nil
}

func (r *stockRecommendationRepository) MarkApplied(ctx context.Context, productID int64, appliedAt time.Time) error {
	query := `UPDATE stock_recommendations SET applied_at = $1, updated_at = NOW() WHERE product_id = $2`

	res, err := r.conn.ExecContext(ctx, query, appliedAt, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationRepository] MarkApplied", "execContext", err)
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationRepository] MarkApplied", "rowsAffected", err)
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *stockRecommendationRepository) GetList(ctx context.Context, filter domain.RecommendationFilter) ([]domain.StockRecommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM stock_recommendations`
	if filter.AppliedOnly {
		query += ` WHERE applied_at IS NOT NULL`
	}
	query += ` ORDER BY updated_at DESC`

	return r.list(ctx, "GetList", query)
}

// GetTop ranks by reorder point, highest first.
func (r *stockRecommendationRepository) GetTop(ctx context.Context, limit int64) ([]domain.StockRecommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM stock_recommendations
	ORDER BY reorder_point DESC
	LIMIT $1`

	return r.list(ctx, "GetTop", query, limit)
}

func (r *stockRecommendationRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.StockRecommendation, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationRepository] "+op, "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var recs []domain.StockRecommendation
	for rows.Next() {
		var rec domain.StockRecommendation
		if err := scanRecommendation(rows, &rec); err != nil {
			slog.ErrorContext(ctx, "[stockRecommendationRepository] "+op, "scan", err)
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationRepository] "+op, "rowError", err)
		return nil, err
	}

	return recs, nil
}
