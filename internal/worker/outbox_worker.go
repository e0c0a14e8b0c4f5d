package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workorders/internal/model"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
)

type OutboxStore interface {
	PendingEvents(ctx context.Context, limit, maxAttempts int) ([]model.OutboxEvent, error)
	DeleteEvent(ctx context.Context, id int64) error
	FailEvent(ctx context.Context, id int64, attempts int, status model.OutboxStatus, next time.Time) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// OutboxWorker relays queued notification events to the broker. An event is removed once
// published and retried after retryDelay otherwise, until it runs out of attempts.
type OutboxWorker struct {
	store       OutboxStore
	publisher   Publisher
	interval    time.Duration
	limit       int
	maxAttempts int
	retryDelay  time.Duration
}

func NewOutboxWorker(store OutboxStore, publisher Publisher, interval time.Duration, limit int) *OutboxWorker {
	return &OutboxWorker{
		store:       store,
		publisher:   publisher,
		interval:    interval,
		limit:       limit,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	slog.Info("starting outbox worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				slog.Error("batch processing failed", "error", err)
			}
		}
	}
}

func (w *OutboxWorker) processBatch(ctx context.Context) error {
	events, err := w.store.PendingEvents(ctx, w.limit, w.maxAttempts)
	if err != nil {
		return fmt.Errorf("get pending events: %w", err)
	}

	for _, e := range events {
		if err := w.publisher.Publish(ctx, e.NotificationID, e.Payload); err != nil {
			slog.Error("failed to publish event", "event", e.ID, "error", err)
			w.fail(ctx, e)
			continue
		}
		if err := w.store.DeleteEvent(ctx, e.ID); err != nil {
			slog.Error("failed to delete published event", "event", e.ID, "error", err)
		}
	}
	return nil
}

func (w *OutboxWorker) fail(ctx context.Context, e model.OutboxEvent) {
	attempts := e.AttemptCount + 1
	status := model.OutboxFailed
	if attempts >= w.maxAttempts {
		status = model.OutboxNoAttemptsLeft
	}
	if err := w.store.FailEvent(ctx, e.ID, attempts, status, time.Now().Add(w.retryDelay)); err != nil {
		slog.Error("failed to record publish failure", "event", e.ID, "error", err)
	}
}
