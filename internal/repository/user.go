package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"workorders/internal/model"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u. A non-empty secretCode is redeemed in the same transaction and
// decides the user's role.
func (r *UserRepository) Create(ctx context.Context, u *model.User, secretCode string, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if secretCode != "" {
		code, err := redeem(ctx, tx, secretCode, now)
		if err != nil {
			return err
		}
		if code == nil {
			return ErrCodeInvalid
		}
		u.Role = code.Role
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (id, email, user_name, role, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		u.ID, u.Email, u.UserName, u.Role, u.PasswordHash, now,
	).Scan(&u.CreatedAt)
	if err != nil {
		if err = classify(err); errors.Is(err, ErrDuplicate) {
			return err
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const userColumns = `id, email, user_name, role, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.UserName, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns nil when no user has the address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetByID returns nil when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, nil
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
