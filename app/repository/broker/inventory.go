package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"inventory-automation/app/domain"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	subjectStockChanged = "stock_changed"
	subjectReorderTask  = "reorder_task"
	subjectJobFinished  = "job_finished"
)

type inventoryBroker struct {
	js     jetstream.JetStream
	prefix string
}

// NewInventoryBrokerPublisher publishes under "<stream>.<event>", matching the
// "<stream>.*" subjects the stream is created with.
func NewInventoryBrokerPublisher(js jetstream.JetStream, streamName string) domain.BrokerPublisher {
	return &inventoryBroker{
		js:     js,
		prefix: strings.ToLower(streamName),
	}
}

func (b *inventoryBroker) PublishStockChanged(ctx context.Context, data domain.StockMessage) error {
	return b.publish(ctx, "PublishStockChanged", subjectStockChanged, data)
}

func (b *inventoryBroker) PublishReorderTask(ctx context.Context, data domain.ReorderTaskMessage) error {
	return b.publish(ctx, "PublishReorderTask", subjectReorderTask, data)
}

func (b *inventoryBroker) PublishJobFinished(ctx context.Context, data domain.JobMessage) error {
	return b.publish(ctx, "PublishJobFinished", subjectJobFinished, data)
}

func (b *inventoryBroker) publish(ctx context.Context, op, event string, data any) error {
	msg, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "[inventoryBroker] "+op, "json.Marshal", err)
		return err
	}

	subject := b.prefix + "." + event
	if _, err = b.js.Publish(ctx, subject, msg); err != nil {
		slog.ErrorContext(ctx, "[inventoryBroker] "+op, "Publish", err)
		return err
	}

	slog.InfoContext(ctx, "[inventoryBroker] "+op, "subject", subject, "message", string(msg))
	return nil
}
