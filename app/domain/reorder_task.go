package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type ReorderStatus string

const (
	ReorderStatusPending   ReorderStatus = "PENDING"
	ReorderStatusOrdered   ReorderStatus = "ORDERED"
	ReorderStatusReceived  ReorderStatus = "RECEIVED"
	ReorderStatusCancelled ReorderStatus = "CANCELLED"
)

func (s ReorderStatus) Valid() bool {
	switch s {
	case ReorderStatusPending, ReorderStatusOrdered, ReorderStatusReceived, ReorderStatusCancelled:
		return true
	}
	return false
}

// Terminal states accept no further transition.
func (s ReorderStatus) Terminal() bool {
	return s == ReorderStatusReceived || s == ReorderStatusCancelled
}

type ReorderReason string

const (
	ReorderReasonLowStock  ReorderReason = "LOW_STOCK"
	ReorderReasonScheduled ReorderReason = "SCHEDULED"
	ReorderReasonManual    ReorderReason = "MANUAL"
)

// ReorderTask invariant: at most one task per product is PENDING or ORDERED.
type ReorderTask struct {
	ID           int64               `json:"id"`
	ProductID    int64               `json:"product_id"`
	SupplierID   *int64              `json:"supplier_id"`
	Quantity     int64               `json:"quantity"`
	Status       ReorderStatus       `json:"status"` // "PENDING", "ORDERED", "RECEIVED", "CANCELLED"
	Reason       ReorderReason       `json:"reason"`
	ReorderPoint int64               `json:"reorder_point"`
	ExpectedAt   time.Time           `json:"expected_at"`
	OrderedAt    *time.Time          `json:"ordered_at"`
	ReceivedAt   *time.Time          `json:"received_at"`
	Cost         decimal.NullDecimal `json:"cost"`
	Notes        string              `json:"notes"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type TriggerReorderRequest struct {
	Reason ReorderReason `json:"reason" validate:"omitempty,oneof=LOW_STOCK SCHEDULED MANUAL"`
}

type ReorderStatusUpdateRequest struct {
	Status ReorderStatus `json:"status" validate:"required,oneof=PENDING ORDERED RECEIVED CANCELLED"`
	Notes  string        `json:"notes"`
}

type ReorderTaskFilter struct {
	Status     string `query:"status"`
	ProductID  int64  `query:"product_id"`
	SupplierID int64  `query:"supplier_id"`
}

type ReorderStats struct {
	Pending          int64           `json:"pending"`
	Ordered          int64           `json:"ordered"`
	Received         int64           `json:"received"`
	Cancelled        int64           `json:"cancelled"`
	Total            int64           `json:"total"`
	TotalPendingCost decimal.Decimal `json:"total_pending_cost"`
}

type ReorderSweepResult struct {
	Checked   int64 `json:"checked"`
	Reordered int64 `json:"reordered"`
	Failed    int64 `json:"failed"`
}

type ReorderTaskRepository interface {
	Create(ctx context.Context, task *ReorderTask, tx *sql.Tx) error
	GetByID(ctx context.Context, id int64) (ReorderTask, error)
	LockForUpdate(ctx context.Context, id int64, tx *sql.Tx) (ReorderTask, error)
	HasOpenTask(ctx context.Context, productID int64, tx *sql.Tx) (bool, error)
	Update(ctx context.Context, task ReorderTask, tx *sql.Tx) error
	GetList(ctx context.Context, filter ReorderTaskFilter) ([]ReorderTask, error)
	GetStats(ctx context.Context) (ReorderStats, error)
}

type AutoReorderUsecase interface {
	ShouldReorder(ctx context.Context, productID int64) (bool, error)
	TriggerReorder(ctx context.Context, productID int64, reason ReorderReason) (ReorderTask, error)
	CheckAllProductsForReorder(ctx context.Context) (ReorderSweepResult, error)
	UpdateReorderStatus(ctx context.Context, taskID int64, req ReorderStatusUpdateRequest) (ReorderTask, error)
	GetReorderTasks(ctx context.Context, filter ReorderTaskFilter) ([]ReorderTask, error)
	GetReorderStats(ctx context.Context) (ReorderStats, error)
}
