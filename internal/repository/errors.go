package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("already exists")
	ErrMissingRef    = errors.New("referenced row does not exist")
	ErrCodeInvalid   = errors.New("access code invalid, used or expired")
	ErrUnknownStatus = errors.New("unknown order status")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// classify maps constraint violations to repository errors and leaves the rest untouched.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return ErrDuplicate
	case pgForeignKeyViolation, pgInvalidText:
		// a malformed id cannot reference anything either
		return ErrMissingRef
	}
	return err
}

// validID reports whether id can name a row; every key is a UUID.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
