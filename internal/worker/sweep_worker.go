package worker

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper completes overdue orders.
type Sweeper interface {
	CheckOrders(ctx context.Context) (int, error)
}

type SweepWorker struct {
	sweeper  Sweeper
	interval time.Duration
}

func NewSweepWorker(sweeper Sweeper, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		sweeper:  sweeper,
		interval: interval,
	}
}

// Start runs a sweep right away and then once per interval until ctx is done.
func (w *SweepWorker) Start(ctx context.Context) {
	slog.Info("starting order sweep worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("order sweep worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	n, err := w.sweeper.CheckOrders(ctx)
	if err != nil {
		slog.Error("order sweep failed", "completed", n, "error", err)
		return
	}
	if n > 0 {
		slog.Info("order sweep done", "completed", n)
	}
}
