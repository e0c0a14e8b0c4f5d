package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"workorders/internal/lifecycle"
	"workorders/internal/model"
	"workorders/internal/repository"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrNotParty      = errors.New("user is not a party to the order")
)

// Notifier delivers a single notification. Delivery failures are not the caller's problem.
type Notifier interface {
	Send(ctx context.Context, recipientID, message string, t model.NotificationType, orderID string) error
}

// Actor is the user performing an action.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) isAdmin() bool { return a.Role == model.RoleAdmin }

type OrderService struct {
	orders   OrderStore
	users    UserStore
	notifier Notifier
	now      func() time.Time
}

func NewOrderService(orders OrderStore, users UserStore, notifier Notifier) *OrderService {
	return &OrderService{orders: orders, users: users, notifier: notifier, now: time.Now}
}

type NewOrder struct {
	OrderName      string
	CustomerID     string
	WorkerID       string
	CompletionDate time.Time
	RevisionDays   int
	Description    string
	FootageLink    string
}

// Create places a new order. Both parties must exist.
func (s *OrderService) Create(ctx context.Context, in NewOrder) (*model.Order, error) {
	for _, id := range []string{in.CustomerID, in.WorkerID} {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve party: %w", err)
		}
		if u == nil {
			return nil, fmt.Errorf("%s: %w", id, ErrUserNotFound)
		}
	}

	o := &model.Order{
		ID:             uuid.NewString(),
		OrderName:      in.OrderName,
		CompletionDate: in.CompletionDate,
		RevisionDays:   in.RevisionDays,
		Description:    in.Description,
		FootageLink:    in.FootageLink,
		Status:         model.StatusPlaced,
		CustomerID:     in.CustomerID,
		WorkerID:       in.WorkerID,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, repository.ErrMissingRef) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	msg := NoticeMessage(model.NotificationOrderPlaced, o.OrderName)
	if err := s.notifier.Send(ctx, o.WorkerID, msg, model.NotificationOrderPlaced, o.ID); err != nil {
		slog.Error("failed to notify worker", "order", o.ID, "error", err)
	}
	return o, nil
}

// GetByID returns nil when the order does not exist. includeOwnerIDs attaches
// createdBy/worker references carrying only their ids.
func (s *OrderService) GetByID(ctx context.Context, id string, includeOwnerIDs bool) (*model.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	if includeOwnerIDs {
		o.CreatedBy = &model.UserRef{ID: o.CustomerID}
		if o.WorkerID != "" {
			o.Worker = &model.UserRef{ID: o.WorkerID}
		}
	}
	return o, nil
}

// ListByUser returns the orders the user works on; only when there are none, the orders
// the user placed. Store failures are logged and yield nil.
func (s *OrderService) ListByUser(ctx context.Context, userID string, includeOwnerName bool) []model.Order {
	orders, err := s.orders.List(ctx, repository.ListFilter{WorkerID: userID, WithOwnerName: includeOwnerName})
	if err != nil {
		slog.Error("error fetching orders by user ID", "user", userID, "error", err)
		return nil
	}
	if len(orders) > 0 {
		return orders
	}

	orders, err = s.orders.List(ctx, repository.ListFilter{CustomerID: userID, WithOwnerName: includeOwnerName})
	if err != nil {
		slog.Error("error fetching orders by user ID", "user", userID, "error", err)
		return nil
	}
	return orders
}

// ListAcceptedByUser returns the user's accepted work. Store failures are logged and yield nil.
func (s *OrderService) ListAcceptedByUser(ctx context.Context, userID string, includeOwnerName bool) []model.Order {
	orders, err := s.orders.List(ctx, repository.ListFilter{
		WorkerID:      userID,
		Status:        model.StatusAccepted,
		WithOwnerName: includeOwnerName,
	})
	if err != nil {
		slog.Error("error fetching accepted orders", "user", userID, "error", err)
		return nil
	}
	return orders
}

func (s *OrderService) userByEmail(ctx context.Context, email string) *model.User {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		slog.Error("error fetching user by email", "email", email, "error", err)
		return nil
	}
	return u
}

// ListByEmail is ListByUser for the user with the address; nil when there is no such user.
func (s *OrderService) ListByEmail(ctx context.Context, email string) []model.Order {
	u := s.userByEmail(ctx, email)
	if u == nil {
		return nil
	}
	return s.ListByUser(ctx, u.ID, false)
}

func (s *OrderService) ListAcceptedByEmail(ctx context.Context, email string) []model.Order {
	u := s.userByEmail(ctx, email)
	if u == nil {
		return nil
	}
	return s.ListAcceptedByUser(ctx, u.ID, false)
}

// Update applies patch. An order that is placed or declined and gets a different worker is
// re-listed for that worker; otherwise status and worker stay as they are.
func (s *OrderService) Update(ctx context.Context, id string, actor Actor, patch model.OrderPatch) (*model.Order, error) {
	now := s.now()
	o, err := s.orders.Update(ctx, id, func(o *model.Order) ([]model.Notification, error) {
		if !actor.isAdmin() && actor.ID != o.CustomerID && actor.ID != o.WorkerID {
			return nil, ErrNotParty
		}

		requested := o.WorkerID
		if patch.WorkerID != nil {
			requested = *patch.WorkerID
		}
		tr, err := lifecycle.Next(o.Status, lifecycle.UpdateTrigger(o.Status, o.WorkerID, requested))
		if err != nil {
			return nil, err
		}

		applyPatch(o, patch)
		o.Status = tr.Target(o.Status)
		if tr.Has(lifecycle.EffectAssignWorker) {
			o.WorkerID = requested
		}
		return notices(o, tr, now), nil
	})
	return o, s.orderErr(err)
}

func applyPatch(o *model.Order, p model.OrderPatch) {
	if p.OrderName != nil {
		o.OrderName = *p.OrderName
	}
	if p.CompletionDate != nil {
		o.CompletionDate = *p.CompletionDate
	}
	if p.RevisionDays != nil {
		o.RevisionDays = *p.RevisionDays
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.FootageLink != nil {
		o.FootageLink = *p.FootageLink
	}
	if p.CustomerID != nil {
		o.CustomerID = *p.CustomerID
	}
}

// SetStatus fires an explicit lifecycle trigger on behalf of actor.
func (s *OrderService) SetStatus(ctx context.Context, id string, actor Actor, t lifecycle.Trigger) (*model.Order, error) {
	now := s.now()
	o, err := s.orders.Update(ctx, id, func(o *model.Order) ([]model.Notification, error) {
		tr, err := lifecycle.Next(o.Status, t)
		if err != nil {
			return nil, err
		}
		if !actor.isAdmin() && !mayFire(tr.By, actor.ID, o) {
			return nil, ErrNotParty
		}
		o.Status = tr.Target(o.Status)
		return notices(o, tr, now), nil
	})
	return o, s.orderErr(err)
}

func mayFire(p lifecycle.Party, userID string, o *model.Order) bool {
	switch p {
	case lifecycle.PartyWorker:
		return userID == o.WorkerID
	case lifecycle.PartyCustomer:
		return userID == o.CustomerID
	case lifecycle.PartyAny:
		return userID == o.CustomerID || userID == o.WorkerID
	}
	return false
}

func (s *OrderService) orderErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrOrderNotFound
	case errors.Is(err, repository.ErrMissingRef):
		return ErrUserNotFound
	}
	return err
}

// DeleteAllByEmail removes, one at a time, every order the user placed or works on.
// It reports false when the user does not exist or the store fails.
func (s *OrderService) DeleteAllByEmail(ctx context.Context, email string) bool {
	u := s.userByEmail(ctx, email)
	if u == nil {
		return false
	}

	orders, err := s.orders.ListByParty(ctx, u.ID)
	if err != nil {
		slog.Error("error fetching orders for deletion", "email", email, "error", err)
		return false
	}
	for _, o := range orders {
		if err := s.orders.Delete(ctx, o.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("error deleting order", "order", o.ID, "error", err)
			return false
		}
	}
	return true
}
