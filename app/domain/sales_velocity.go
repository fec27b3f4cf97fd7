package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesVelocity is recomputed wholesale on every run.
// VarianceDailyDemand holds the standard deviation of the daily buckets, the
// sigma consumed by safety stock.
type SalesVelocity struct {
	ProductID           int64     `json:"product_id"`
	Daily               float64   `json:"daily"`
	Weekly              float64   `json:"weekly"`
	Monthly             float64   `json:"monthly"`
	VarianceDailyDemand float64   `json:"variance_daily_demand"`
	DataPoints          int64     `json:"data_points"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type SalesVelocityDetail struct {
	SalesVelocity
	ForecastedDailyDemand   float64         `json:"forecasted_daily_demand"`
	EstimatedMonthlyRevenue decimal.Decimal `json:"estimated_monthly_revenue"`
}

type VelocitySweepResult struct {
	Processed int64 `json:"processed"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

type SalesVelocityRepository interface {
	Upsert(ctx context.Context, v *SalesVelocity) error
	GetByProductID(ctx context.Context, productID int64) (SalesVelocity, error)
	GetTop(ctx context.Context, limit int64) ([]SalesVelocity, error)
}

type SalesVelocityUsecase interface {
	UpdateVelocity(ctx context.Context, productID int64) (SalesVelocity, error)
	UpdateAllVelocities(ctx context.Context) (VelocitySweepResult, error)
	GetVelocity(ctx context.Context, productID int64) (SalesVelocityDetail, error)
	GetTopVelocities(ctx context.Context, limit int64) ([]SalesVelocity, error)
}
