package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"workorders/internal/lifecycle"
)

// CheckOrders completes every active order whose completion date has passed and notifies
// both parties. Orders are handled concurrently, each in its own transaction that is guarded
// on the order still being active, so a repeated sweep does not notify twice.
// It returns the number of orders it completed.
func (s *OrderService) CheckOrders(ctx context.Context) (int, error) {
	active := lifecycle.Sources(lifecycle.TriggerExpire)
	now := s.now()

	due, err := s.orders.ListDue(ctx, now, active)
	if err != nil {
		return 0, fmt.Errorf("list due orders: %w", err)
	}

	// orders fail independently, so the group gets no derived context
	var completed atomic.Int64
	var g errgroup.Group
	for _, o := range due {
		o := o
		g.Go(func() error {
			tr, err := lifecycle.Next(o.Status, lifecycle.TriggerExpire)
			if err != nil {
				return err
			}

			slog.Info("sending notifications and updating status", "order", o.ID)
			ok, err := s.orders.Transition(ctx, o.ID, active, tr.To, notices(&o, tr, now))
			if err != nil {
				return fmt.Errorf("complete order %s: %w", o.ID, err)
			}
			if ok {
				completed.Add(1)
			}
			return nil
		})
	}

	err = g.Wait()
	return int(completed.Load()), err
}
