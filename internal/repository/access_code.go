package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"workorders/internal/model"
)

type AccessCodeRepository struct {
	db *sql.DB
}

func NewAccessCodeRepository(db *sql.DB) *AccessCodeRepository {
	return &AccessCodeRepository{db: db}
}

const accessCodeColumns = `id, custom_name, email, contract_number, role, secret_code, expiration_date, used, created_at`

func scanAccessCode(row scanner) (*model.AccessCode, error) {
	var c model.AccessCode
	err := row.Scan(&c.ID, &c.CustomName, &c.Email, &c.ContractNumber, &c.Role, &c.SecretCode,
		&c.ExpirationDate, &c.Used, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *AccessCodeRepository) Create(ctx context.Context, c *model.AccessCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_codes (`+accessCodeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.CustomName, c.Email, c.ContractNumber, c.Role, c.SecretCode, c.ExpirationDate, c.Used, c.CreatedAt)
	if err != nil {
		if err = classify(err); errors.Is(err, ErrDuplicate) {
			return err
		}
		return fmt.Errorf("insert access code: %w", err)
	}
	return nil
}

func (r *AccessCodeRepository) List(ctx context.Context) ([]model.AccessCode, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accessCodeColumns+` FROM access_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query access codes: %w", err)
	}
	defer rows.Close()

	var codes []model.AccessCode
	for rows.Next() {
		c, err := scanAccessCode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan access code: %w", err)
		}
		codes = append(codes, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return codes, nil
}

// redeem flips used on a live code and returns it, or nil when there is nothing to redeem.
func redeem(ctx context.Context, tx *sql.Tx, secret string, now time.Time) (*model.AccessCode, error) {
	c, err := scanAccessCode(tx.QueryRowContext(ctx,
		`UPDATE access_codes SET used = TRUE
		 WHERE secret_code = $1 AND used = FALSE AND expiration_date > $2
		 RETURNING `+accessCodeColumns, secret, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redeem access code: %w", err)
	}
	return c, nil
}
