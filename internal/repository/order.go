package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"workorders/internal/model"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Mutation edits a locked order in place and returns the notifications to store with the change.
type Mutation func(o *model.Order) ([]model.Notification, error)

const orderColumns = `o.id, o.order_name, o.completion_date, o.revision_days, o.description, o.footage_link,
	o.order_status, o.customer_id, o.worker_id, o.created_at, o.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner, extra ...any) (*model.Order, error) {
	var o model.Order
	var workerID sql.NullString
	dest := []any{
		&o.ID, &o.OrderName, &o.CompletionDate, &o.RevisionDays, &o.Description, &o.FootageLink,
		&o.Status, &o.CustomerID, &workerID, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if !o.Status.Valid() {
		return nil, fmt.Errorf("order %s: %w: %q", o.ID, ErrUnknownStatus, o.Status)
	}
	o.WorkerID = workerID.String
	return &o, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *OrderRepository) Create(ctx context.Context, o *model.Order) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_name, completion_date, revision_days, description, footage_link,
			order_status, customer_id, worker_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING created_at, updated_at`,
		o.ID, o.OrderName, o.CompletionDate, o.RevisionDays, o.Description, o.FootageLink,
		o.Status, o.CustomerID, nullable(o.WorkerID), time.Now(),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err = classify(err); errors.Is(err, ErrMissingRef) {
			return err
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID returns nil when the order does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListFilter narrows ListBy. Empty fields do not filter.
type ListFilter struct {
	WorkerID      string
	CustomerID    string
	Status        model.OrderStatus
	WithOwnerName bool
}

func (r *OrderRepository) List(ctx context.Context, f ListFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `, c.user_name
		FROM orders o JOIN users c ON c.id = o.customer_id
		WHERE ($1 = '' OR o.worker_id::text = $1)
		  AND ($2 = '' OR o.customer_id::text = $2)
		  AND ($3 = '' OR o.order_status = $3)
		ORDER BY o.completion_date ASC`

	rows, err := r.db.QueryContext(ctx, query, f.WorkerID, f.CustomerID, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var ownerName string
		o, err := scanOrder(rows, &ownerName)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if f.WithOwnerName {
			o.CreatedBy = &model.UserRef{UserName: ownerName}
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return orders, nil
}

// ListByParty returns every order the user is customer or worker on.
func (r *OrderRepository) ListByParty(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.customer_id = $1 OR o.worker_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return orders, nil
}

// ListDue returns orders due at or before now whose status is one of statuses.
func (r *OrderRepository) ListDue(ctx context.Context, now time.Time, statuses []model.OrderStatus) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders o
		 WHERE o.completion_date <= $1 AND o.order_status = ANY($2)
		 ORDER BY o.completion_date ASC`,
		now, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("query due orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return orders, nil
}

// Update locks the order, applies mutate and writes the result together with its notifications.
func (r *OrderRepository) Update(ctx context.Context, id string, mutate Mutation) (*model.Order, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	o, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}

	notes, err := mutate(o)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE orders SET order_name = $1, completion_date = $2, revision_days = $3, description = $4,
			footage_link = $5, order_status = $6, customer_id = $7, worker_id = $8, updated_at = $9
		WHERE id = $10
		RETURNING updated_at`,
		o.OrderName, o.CompletionDate, o.RevisionDays, o.Description, o.FootageLink,
		o.Status, o.CustomerID, nullable(o.WorkerID), time.Now(), o.ID,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if err = classify(err); errors.Is(err, ErrMissingRef) {
			return nil, err
		}
		return nil, fmt.Errorf("update order: %w", err)
	}

	if err := insertNotifications(ctx, tx, notes); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return o, nil
}

// Transition moves the order to status `to` if it is still in one of `from`, storing notes in the
// same transaction. It reports false when the guard did not match.
func (r *OrderRepository) Transition(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus, notes []model.Notification) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET order_status = $1, updated_at = $2 WHERE id = $3 AND order_status = ANY($4)`,
		to, time.Now(), id, statusStrings(from))
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := insertNotifications(ctx, tx, notes); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func statusStrings(ss []model.OrderStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
