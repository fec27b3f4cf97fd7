package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type DeadStockStatus string

const (
	DeadStockStatusActive   DeadStockStatus = "ACTIVE"
	DeadStockStatusReviewed DeadStockStatus = "REVIEWED"
	DeadStockStatusArchived DeadStockStatus = "ARCHIVED"
	DeadStockStatusDelisted DeadStockStatus = "DELISTED"
)

type DeadStockAction string

const (
	DeadStockActionDiscount  DeadStockAction = "DISCOUNT"
	DeadStockActionClearance DeadStockAction = "CLEARANCE"
	DeadStockActionBundle    DeadStockAction = "BUNDLE"
	DeadStockActionReturn    DeadStockAction = "RETURN"
	DeadStockActionDonate    DeadStockAction = "DONATE"
)

func (a DeadStockAction) Valid() bool {
	switch a {
	case DeadStockActionDiscount, DeadStockActionClearance, DeadStockActionBundle,
		DeadStockActionReturn, DeadStockActionDonate:
		return true
	}
	return false
}

// DeadStockAlert is unique per product. DELISTED is absorbing.
type DeadStockAlert struct {
	ID              int64            `json:"id"`
	ProductID       int64            `json:"product_id"`
	DaysWithoutSale int64            `json:"days_without_sale"`
	LastSaleDate    *time.Time       `json:"last_sale_date"`
	CurrentStock    int64            `json:"current_stock"`
	EstimatedValue  decimal.Decimal  `json:"estimated_value"`
	Status          DeadStockStatus  `json:"status"` // "ACTIVE", "REVIEWED", "ARCHIVED", "DELISTED"
	Action          *DeadStockAction `json:"action"`
	ActionAt        *time.Time       `json:"action_at"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type DeadStockCandidate struct {
	ProductID        int64           `json:"product_id"`
	Name             string          `json:"name"`
	DaysWithoutSale  int64           `json:"days_without_sale"`
	LastSaleDate     *time.Time      `json:"last_sale_date"`
	CurrentStock     int64           `json:"current_stock"`
	EstimatedValue   decimal.Decimal `json:"estimated_value"`
	DepreciationRate float64         `json:"depreciation_rate"`
}

type DeadStockActionRequest struct {
	Action DeadStockAction `json:"action" validate:"required,oneof=DISCOUNT CLEARANCE BUNDLE RETURN DONATE"`
	Notes  string          `json:"notes"`
}

type DeadStockFilter struct {
	Status             string  `query:"status"`
	MinDaysWithoutSale int64   `query:"min_days"`
	MinCurrentStock    int64   `query:"min_stock"`
	MinEstimatedValue  float64 `query:"min_value"`
}

type DeadStockStats struct {
	Active              int64           `json:"active"`
	Reviewed            int64           `json:"reviewed"`
	Archived            int64           `json:"archived"`
	Delisted            int64           `json:"delisted"`
	Total               int64           `json:"total"`
	TotalEstimatedValue decimal.Decimal `json:"total_estimated_value"`
}

type AlertSweepResult struct {
	Created     int64 `json:"created"`
	Updated     int64 `json:"updated"`
	Skipped     int64 `json:"skipped"`
	Failed      int64 `json:"failed"`
	TotalAlerts int64 `json:"total_alerts"`
}

type DeadStockAlertRepository interface {
	Create(ctx context.Context, alert *DeadStockAlert, tx *sql.Tx) error
	GetByID(ctx context.Context, id int64) (DeadStockAlert, error)
	LockForUpdate(ctx context.Context, id int64, tx *sql.Tx) (DeadStockAlert, error)
	LockByProductID(ctx context.Context, productID int64, tx *sql.Tx) (DeadStockAlert, error)
	UpdateDetection(ctx context.Context, alert DeadStockAlert, tx *sql.Tx) error
	UpdateReview(ctx context.Context, alert DeadStockAlert, tx *sql.Tx) error
	ArchiveReviewed(ctx context.Context) (int64, error)
	GetList(ctx context.Context, filter DeadStockFilter) ([]DeadStockAlert, error)
	GetStats(ctx context.Context) (DeadStockStats, error)
}

type DeadStockUsecase interface {
	DetectDeadStock(ctx context.Context, productID *int64) ([]DeadStockCandidate, error)
	CreateOrUpdateAlerts(ctx context.Context) (AlertSweepResult, error)
	ApplyAction(ctx context.Context, alertID int64, req DeadStockActionRequest) (DeadStockAlert, error)
	DelistProduct(ctx context.Context, alertID int64) (DeadStockAlert, error)
	ArchiveReviewed(ctx context.Context) (int64, error)
	GetClearanceCandidates(ctx context.Context) ([]DeadStockAlert, error)
	GetAlerts(ctx context.Context, filter DeadStockFilter) ([]DeadStockAlert, error)
	GetStats(ctx context.Context) (DeadStockStats, error)
}
