package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/mlavigne/client-management/internal"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// translate maps driver and gorm failures onto the AppError taxonomy so
// callers never see storage-specific error types.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return internal.NewNotFoundError("record not found", internal.ErrCodeRecordNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return internal.NewValidationError("key already exists", internal.ErrCodeDuplicateKey).WithCause(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return internal.NewPersistenceError("storage operation cancelled", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return internal.NewValidationError("key already exists", internal.ErrCodeDuplicateKey).WithCause(err)
		case "23503", "23514": // foreign_key_violation, check_violation
			return internal.NewValidationError("constraint violation", internal.ErrCodeConstraintViolation).WithCause(err)
		case "40001": // serialization_failure
			return internal.NewConflictError("record was modified by another user", internal.ErrCodeConcurrencyConflict).WithCause(err)
		}
	}

	// sqlite (used by the test suites) reports uniqueness as a plain string
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return internal.NewValidationError("key already exists", internal.ErrCodeDuplicateKey).WithCause(err)
	}

	return internal.NewPersistenceError("storage operation failed", err)
}
