package service

import (
	"context"

	"workorders/internal/model"
)

type OrderLister interface {
	ListByUser(ctx context.Context, userID string, includeOwnerName bool) []model.Order
}

type MetricsService struct {
	orders OrderLister
}

func NewMetricsService(orders OrderLister) *MetricsService {
	return &MetricsService{orders: orders}
}

type Stats struct {
	CompletionRate float64 `json:"completionRate"`
	PendingTasks   int     `json:"pendingTasks"`
}

// CompletionRate is the share of the user's non-declined orders that were completed or paid,
// in percent. It is 0 whenever the ratio is not positive.
func (s *MetricsService) CompletionRate(ctx context.Context, userID string) float64 {
	return completionRate(s.orders.ListByUser(ctx, userID, false))
}

func completionRate(orders []model.Order) float64 {
	var completed, declined int
	for _, o := range orders {
		switch o.Status {
		case model.StatusCompleted, model.StatusPayed:
			completed++
		case model.StatusDeclined:
			declined++
		}
	}

	total := len(orders) - declined
	if total <= 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	if rate > 0 {
		return rate
	}
	return 0
}

// PendingCount is the number of accepted orders still waiting on the user.
func (s *MetricsService) PendingCount(ctx context.Context, userID string) int {
	return pendingCount(s.orders.ListByUser(ctx, userID, false))
}

func pendingCount(orders []model.Order) int {
	n := 0
	for _, o := range orders {
		if o.Status == model.StatusAccepted {
			n++
		}
	}
	return n
}

func (s *MetricsService) Stats(ctx context.Context, userID string) Stats {
	orders := s.orders.ListByUser(ctx, userID, false)
	return Stats{
		CompletionRate: completionRate(orders),
		PendingTasks:   pendingCount(orders),
	}
}
