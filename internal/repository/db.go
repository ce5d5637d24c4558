package repository

import (
	"errors"
	"fmt"

	"cashier/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories react to.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgForeignKeyViolation  = "23503"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
)

// pgErrorCode returns the SQLSTATE of err, or "" if err is not a PostgreSQL error.
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isConflict reports whether err is a transient concurrency failure that
// is worth retrying in a fresh transaction.
func isConflict(err error) bool {
	switch pgErrorCode(err) {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return true
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isCheckViolation(err error) bool {
	return pgErrorCode(err) == pgCheckViolation
}

// ClassifyError converts a driver error into the domain error the service
// layer reasons about: conflicts become model.ErrConflict, everything else a
// *model.StorageError for op. Domain errors pass through untouched.
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		validationErr *model.ValidationError
		notFoundErr   *model.ProductNotFoundError
		stockErr      *model.InsufficientStockError
		storageErr    *model.StorageError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &notFoundErr),
		errors.As(err, &stockErr),
		errors.As(err, &storageErr),
		errors.Is(err, model.ErrConflict):
		return err
	case isConflict(err):
		return fmt.Errorf("%w (%s: %v)", model.ErrConflict, op, err)
	}

	return &model.StorageError{Op: op, Err: err}
}
