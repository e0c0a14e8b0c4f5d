package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workorders/internal/lifecycle"
	"workorders/internal/model"
	"workorders/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

const notificationListLimit = 100

var noticeText = map[model.NotificationType]string{
	model.NotificationOrderPlaced:     "Order %s was assigned to you",
	model.NotificationOrderAccepted:   "Order %s was accepted",
	model.NotificationOrderDeclined:   "Order %s was declined",
	model.NotificationOrderInProgress: "Order %s is in progress",
	model.NotificationOrderCompleted:  "Order %s completed",
	model.NotificationOrderPayed:      "Order %s was paid",
}

// NoticeMessage renders the text shown for a notification about an order.
func NoticeMessage(t model.NotificationType, orderName string) string {
	format, ok := noticeText[t]
	if !ok {
		return orderName
	}
	return fmt.Sprintf(format, orderName)
}

func newNotification(recipientID, message string, t model.NotificationType, orderID string, now time.Time) model.Notification {
	return model.Notification{
		ID:        uuid.NewString(),
		UserID:    recipientID,
		Message:   message,
		Type:      t,
		OrderID:   orderID,
		CreatedAt: now,
	}
}

// notices builds the notifications a transition asks for.
func notices(o *model.Order, tr lifecycle.Transition, now time.Time) []model.Notification {
	msg := NoticeMessage(tr.Notice, o.OrderName)
	var out []model.Notification
	if tr.Has(lifecycle.EffectNotifyCustomer) {
		out = append(out, newNotification(o.CustomerID, msg, tr.Notice, o.ID, now))
	}
	if tr.Has(lifecycle.EffectNotifyWorker) && o.WorkerID != "" {
		out = append(out, newNotification(o.WorkerID, msg, tr.Notice, o.ID, now))
	}
	return out
}

type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// Send stores a notification for recipientID and queues it for delivery.
func (s *NotificationService) Send(ctx context.Context, recipientID, message string, t model.NotificationType, orderID string) error {
	n := newNotification(recipientID, message, t, orderID, time.Now())
	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]model.Notification, error) {
	return s.store.ListByUser(ctx, userID, notificationListLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	err := s.store.MarkRead(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
