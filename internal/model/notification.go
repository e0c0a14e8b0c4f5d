package model

import "time"

type NotificationType string

const (
	NotificationOrderPlaced     NotificationType = "ORDER_PLACED"
	NotificationOrderAccepted   NotificationType = "ORDER_ACCEPTED"
	NotificationOrderDeclined   NotificationType = "ORDER_DECLINED"
	NotificationOrderInProgress NotificationType = "ORDER_IN_PROGRESS"
	NotificationOrderCompleted  NotificationType = "ORDER_COMPLETED"
	NotificationOrderPayed      NotificationType = "ORDER_PAYED"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	OrderID   string           `json:"orderId,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

type OutboxStatus string

const (
	OutboxCreated        OutboxStatus = "CREATED"
	OutboxFailed         OutboxStatus = "FAILED"
	OutboxNoAttemptsLeft OutboxStatus = "NO_ATTEMPTS_LEFT"
)

// OutboxEvent carries a notification to the message broker.
type OutboxEvent struct {
	ID             int64
	NotificationID string
	Payload        []byte
	Status         OutboxStatus
	AttemptCount   int
	NextAttemptAt  *time.Time
	CreatedAt      time.Time
}
