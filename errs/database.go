package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
)

var (
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrForeignKeyConstraint      = errors.New("foreign key constraint violation")
	ErrTransactionFailed         = errors.New("transaction failed")
)

// Postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

func NewAlreadyExists(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
	}
}

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewDatabaseError classifies a storage error for the given operation on entity.
// Errors that are already ApiErr pass through unchanged.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	details := fmt.Sprintf("Failed to %s %s", operation, entity)
	if cause == nil {
		return &ApiErr{StatusCode: http.StatusInternalServerError, err: ErrDatabaseQuery, Details: details}
	}

	if errors.Is(cause, gorm.ErrRecordNotFound) {
		return NewNotFound(entity)
	}

	var pgErr *pgconn.PgError
	if errors.As(cause, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return NewUniqueConstraintViolationError(entity, pgErr.ColumnName, cause)
		case pgForeignKeyViolation:
			return NewForeignKeyConstraintError(entity, pgErr.ConstraintName, cause)
		case pgNotNullViolation:
			return NewMissingRequiredFieldError(pgErr.ColumnName)
		}
	}

	if errors.Is(cause, gorm.ErrDuplicatedKey) {
		return NewUniqueConstraintViolationError(entity, "", cause)
	}
	if errors.Is(cause, gorm.ErrForeignKeyViolated) {
		return NewForeignKeyConstraintError(entity, "", cause)
	}

	// sqlite reports constraint failures only through the message
	errStr := cause.Error()
	switch {
	case strings.Contains(errStr, "UNIQUE constraint failed"), strings.Contains(errStr, "duplicate key"):
		return NewUniqueConstraintViolationError(entity, "", cause)
	case strings.Contains(errStr, "FOREIGN KEY constraint failed"), strings.Contains(errStr, "foreign key constraint"):
		return NewForeignKeyConstraintError(entity, "", cause)
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "bad connection"):
		return &ApiErr{
			StatusCode: http.StatusServiceUnavailable,
			err:        ErrDatabaseConnection,
			Details:    "Unable to connect to database",
			Cause:      cause,
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

func NewUniqueConstraintViolationError(entity, field string, cause error) *ApiErr {
	details := fmt.Sprintf("%s with these values already exists", entity)
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrUniqueConstraintViolation,
		Details:    details,
		Field:      field,
		Cause:      cause,
	}
}

func NewForeignKeyConstraintError(entity, constraint string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrForeignKeyConstraint,
		Details:    fmt.Sprintf("%s references a resource that does not exist", entity),
		Field:      constraint,
		Cause:      cause,
	}
}

func NewTransactionFailedError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrTransactionFailed,
		Details:    fmt.Sprintf("Transaction failed during %s", operation),
		Cause:      cause,
	}
}

func IsUniqueConstraintViolationError(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation)
}

func IsForeignKeyConstraintError(err error) bool {
	return errors.Is(err, ErrForeignKeyConstraint)
}
