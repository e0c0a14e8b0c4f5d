package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"workorders/internal/model"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// insertNotifications stores notes and queues one outbox event per note inside tx.
func insertNotifications(ctx context.Context, tx *sql.Tx, notes []model.Notification) error {
	for i := range notes {
		n := &notes[i]
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO notifications (id, user_id, message, type, order_id, read, created_at)
			 VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
			n.ID, n.UserID, n.Message, n.Type, nullable(n.OrderID), n.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert notification: %w", classify(err))
		}

		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO notification_outbox (notification_id, payload, status, attempt_count, created_at)
			 VALUES ($1, $2, $3, 0, $4)`,
			n.ID, payload, model.OutboxCreated, n.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
	}
	return nil
}

func (r *NotificationRepository) Create(ctx context.Context, notes ...model.Notification) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertNotifications(ctx, tx, notes); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, message, type, order_id, read, created_at
		 FROM notifications WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notes []model.Notification
	for rows.Next() {
		var n model.Notification
		var orderID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &orderID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.OrderID = orderID.String
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return notes, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PendingEvents returns outbox events that are due and still have attempts left.
func (r *NotificationRepository) PendingEvents(ctx context.Context, limit, maxAttempts int) ([]model.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, notification_id, payload, status, attempt_count, next_attempt_at, created_at
		FROM notification_outbox
		WHERE status IN ($1, $2)
		  AND (next_attempt_at IS NULL OR next_attempt_at <= NOW())
		  AND attempt_count < $3
		ORDER BY created_at
		LIMIT $4`,
		model.OutboxCreated, model.OutboxFailed, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []model.OutboxEvent
	for rows.Next() {
		var e model.OutboxEvent
		var next sql.NullTime
		if err := rows.Scan(&e.ID, &e.NotificationID, &e.Payload, &e.Status, &e.AttemptCount, &next, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		if next.Valid {
			e.NextAttemptAt = &next.Time
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return events, nil
}

func (r *NotificationRepository) DeleteEvent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notification_outbox WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete outbox event: %w", err)
	}
	return nil
}

func (r *NotificationRepository) FailEvent(ctx context.Context, id int64, attempts int, status model.OutboxStatus, next time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notification_outbox SET status = $1, attempt_count = $2, next_attempt_at = $3 WHERE id = $4`,
		status, attempts, next, id)
	if err != nil {
		return fmt.Errorf("update outbox event: %w", err)
	}
	return nil
}
