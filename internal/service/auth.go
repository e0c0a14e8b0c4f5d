package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"workorders/internal/model"
	"workorders/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidCode        = errors.New("access code invalid, used or expired")
)

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

type Registration struct {
	Email      string
	UserName   string
	Password   string
	SecretCode string
}

// Register creates an account. A secret code, when given, is consumed and sets the role;
// without one the user is a customer.
func (s *AuthService) Register(ctx context.Context, r Registration) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        r.Email,
		UserName:     r.UserName,
		Role:         model.RoleCustomer,
		PasswordHash: hash,
	}
	err = s.users.Create(ctx, user, r.SecretCode, time.Now())
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrEmailTaken
	case errors.Is(err, repository.ErrCodeInvalid):
		return nil, ErrInvalidCode
	case err != nil:
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
