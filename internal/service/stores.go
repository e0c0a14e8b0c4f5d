package service

import (
	"context"
	"time"

	"workorders/internal/model"
	"workorders/internal/repository"
)

type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, f repository.ListFilter) ([]model.Order, error)
	ListByParty(ctx context.Context, userID string) ([]model.Order, error)
	ListDue(ctx context.Context, now time.Time, statuses []model.OrderStatus) ([]model.Order, error)
	Update(ctx context.Context, id string, mutate repository.Mutation) (*model.Order, error)
	Transition(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus, notes []model.Notification) (bool, error)
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	Create(ctx context.Context, u *model.User, secretCode string, now time.Time) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type NotificationStore interface {
	Create(ctx context.Context, notes ...model.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

type AccessCodeStore interface {
	Create(ctx context.Context, c *model.AccessCode) error
	List(ctx context.Context) ([]model.AccessCode, error)
}

type GroupStore interface {
	Create(ctx context.Context, g *model.Group) error
	List(ctx context.Context) ([]model.Group, error)
	GetByName(ctx context.Context, name string) (*model.Group, error)
}

var (
	_ OrderStore        = (*repository.OrderRepository)(nil)
	_ UserStore         = (*repository.UserRepository)(nil)
	_ NotificationStore = (*repository.NotificationRepository)(nil)
	_ AccessCodeStore   = (*repository.AccessCodeRepository)(nil)
	_ GroupStore        = (*repository.GroupRepository)(nil)
)
