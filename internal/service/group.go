package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workorders/internal/model"
	"workorders/internal/repository"
)

var ErrGroupExists = errors.New("group already exists")

type GroupService struct {
	groups GroupStore
}

func NewGroupService(groups GroupStore) *GroupService {
	return &GroupService{groups: groups}
}

func (s *GroupService) List(ctx context.Context) ([]model.Group, error) {
	return s.groups.List(ctx)
}

// GetByName returns nil when there is no such group.
func (s *GroupService) GetByName(ctx context.Context, name string) (*model.Group, error) {
	return s.groups.GetByName(ctx, name)
}

func (s *GroupService) Create(ctx context.Context, name, description, fullDescription string) (*model.Group, error) {
	g := &model.Group{
		ID:                   uuid.NewString(),
		GroupName:            name,
		GroupDescription:     description,
		GroupFullDescription: fullDescription,
		CreatedAt:            time.Now(),
	}
	if err := s.groups.Create(ctx, g); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrGroupExists
		}
		return nil, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}
