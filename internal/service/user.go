package service

import (
	"context"
	"errors"
	"fmt"

	"workorders/internal/model"
	"workorders/internal/repository"
)

type UserService struct {
	users  UserStore
	orders *OrderService
}

func NewUserService(users UserStore, orders *OrderService) *UserService {
	return &UserService{users: users, orders: orders}
}

// GetByID returns nil when the user does not exist.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByEmail returns nil when the user does not exist.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// DeleteByEmail removes the user's orders and then the user.
func (s *UserService) DeleteByEmail(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}

	if !s.orders.DeleteAllByEmail(ctx, email) {
		return fmt.Errorf("delete orders of %s failed", email)
	}

	if err := s.users.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
