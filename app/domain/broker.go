package domain

import (
	"context"
	"time"
)

type StockMessage struct {
	ProductID     int64  `json:"product_id"`
	PreviousStock int64  `json:"previous_stock"`
	NewStock      int64  `json:"new_stock"`
	InStock       bool   `json:"in_stock"`
	Active        bool   `json:"active"`
	Reason        string `json:"reason"`
}

type ReorderTaskMessage struct {
	TaskID     int64         `json:"task_id"`
	ProductID  int64         `json:"product_id"`
	SupplierID *int64        `json:"supplier_id"`
	Quantity   int64         `json:"quantity"`
	Status     ReorderStatus `json:"status"`
	Reason     ReorderReason `json:"reason"`
}

type JobMessage struct {
	JobID       string    `json:"job_id"`
	Type        JobType   `json:"type"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

type BrokerPublisher interface {
	PublishStockChanged(ctx context.Context, data StockMessage) error
	PublishReorderTask(ctx context.Context, data ReorderTaskMessage) error
	PublishJobFinished(ctx context.Context, data JobMessage) error
}
