package domain

import (
	"context"
	"time"
)

// StockRecommendation invariant: MinStock <= ReorderPoint <= MaxStock.
// IsDefault marks the conservative fallback for products without sales; it
// is returned to the caller but never stored.
type StockRecommendation struct {
	ProductID          int64      `json:"product_id"`
	MinStock           int64      `json:"min_stock"`
	MaxStock           int64      `json:"max_stock"`
	SafetyStock        int64      `json:"safety_stock"`
	ReorderPoint       int64      `json:"reorder_point"`
	ForecastedVelocity float64    `json:"forecasted_velocity"`
	Confidence         float64    `json:"confidence"`
	LeadTimeDays       int64      `json:"lead_time_days"`
	AppliedAt          *time.Time `json:"applied_at"`
	IsDefault          bool       `json:"is_default"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type RecommendationFilter struct {
	AppliedOnly bool `query:"applied_only"`
}

type RecommendationSweepResult struct {
	Generated int64 `json:"generated"`
	Updated   int64 `json:"updated"`
	Defaulted int64 `json:"defaulted"`
	Failed    int64 `json:"failed"`
}

type StockRecommendationRepository interface {
	// Upsert reports whether a new row was created.
	Upsert(ctx context.Context, rec *StockRecommendation) (bool, error)
	GetByProductID(ctx context.Context, productID int64) (StockRecommendation, error)
	MarkApplied(ctx context.Context, productID int64, appliedAt time.Time) error
	GetList(ctx context.Context, filter RecommendationFilter) ([]StockRecommendation, error)
	GetTop(ctx context.Context, limit int64) ([]StockRecommendation, error)
}

type StockRecommendationUsecase interface {
	GenerateRecommendation(ctx context.Context, productID int64) (StockRecommendation, error)
	GenerateAllRecommendations(ctx context.Context) (RecommendationSweepResult, error)
	ApplyRecommendation(ctx context.Context, productID int64) (StockRecommendation, error)
	GetRecommendation(ctx context.Context, productID int64) (StockRecommendation, error)
	ListRecommendations(ctx context.Context, filter RecommendationFilter) ([]StockRecommendation, error)
	GetTopRecommendations(ctx context.Context, limit int64) ([]StockRecommendation, error)
}
