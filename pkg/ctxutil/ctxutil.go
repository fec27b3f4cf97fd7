package ctxutil

import (
	"context"
	"errors"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "request_id"
	JobIDKey     ctxKey = "job_id"
	UserIDKey    ctxKey = "user_id"
)

func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, reqID)
}

func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(RequestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, JobIDKey, jobID)
}

func GetJobID(ctx context.Context) string {
	if v := ctx.Value(JobIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func GetUserIDCtx(ctx context.Context) (int64, error) {
	if v := ctx.Value(UserIDKey); v != nil {
		if id, ok := v.(int64); ok {
			return id, nil
		}
	}
	return 0, errors.New("user id not found in context")
}
