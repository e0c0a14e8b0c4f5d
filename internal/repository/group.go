package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"workorders/internal/model"
)

type GroupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g *model.Group) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups (id, group_name, group_description, group_full_description, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.GroupName, g.GroupDescription, g.GroupFullDescription, g.CreatedAt)
	if err != nil {
		if err = classify(err); errors.Is(err, ErrDuplicate) {
			return err
		}
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (r *GroupRepository) List(ctx context.Context) ([]model.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_name, group_description, group_full_description, created_at
		 FROM groups ORDER BY group_name`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.GroupName, &g.GroupDescription, &g.GroupFullDescription, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return groups, nil
}

// GetByName returns nil when no group has the name.
func (r *GroupRepository) GetByName(ctx context.Context, name string) (*model.Group, error) {
	var g model.Group
	err := r.db.QueryRowContext(ctx,
		`SELECT id, group_name, group_description, group_full_description, created_at
		 FROM groups WHERE group_name = $1`, name,
	).Scan(&g.ID, &g.GroupName, &g.GroupDescription, &g.GroupFullDescription, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}
