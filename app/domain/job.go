package domain

import (
	"context"
	"time"
)

type JobType string

const (
	JobTypeSalesVelocity        JobType = "SALES_VELOCITY"
	JobTypeStockRecommendations JobType = "STOCK_RECOMMENDATIONS"
	JobTypeAutoReorder          JobType = "AUTO_REORDER"
	JobTypeDeadStockDetection   JobType = "DEAD_STOCK_DETECTION"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type Job struct {
	ID          string     `json:"id"`
	Type        JobType    `json:"type"`
	Status      JobStatus  `json:"status"`
	Result      any        `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type EnqueueJobRequest struct {
	Type JobType `json:"type" validate:"required,oneof=SALES_VELOCITY STOCK_RECOMMENDATIONS AUTO_REORDER DEAD_STOCK_DETECTION"`
}

// JobHandler runs one job type to completion and returns its result.
type JobHandler func(ctx context.Context) (any, error)

type JobQueue interface {
	Enqueue(jobType JobType) (string, error)
	GetStatus(id string) (Job, error)
	GetAll() []Job
	ClearCompleted() int
}

// JobLocker provides cross-process mutual exclusion for job runs.
type JobLocker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (JobLock, error)
}

type JobLock interface {
	Release(ctx context.Context) error
}
