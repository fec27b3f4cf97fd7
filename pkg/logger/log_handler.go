package logger

import (
	"context"
	"log/slog"

	"inventory-automation/pkg/ctxutil"
)

// ContextHandler adds the request id and job id carried by the context to
// every record.
type ContextHandler struct {
	slog.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}
	if jobID := ctxutil.GetJobID(ctx); jobID != "" {
		r.AddAttrs(slog.String("job_id", jobID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
