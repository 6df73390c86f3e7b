package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/stitchline/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// translateError maps driver and gorm errors to domain errors. Errors with no
// domain meaning are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return shared.ErrStorageTimeout
	case isUniqueViolation(err):
		return shared.ErrAlreadyExists
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE "+uniqueViolation) || strings.Contains(msg, "UNIQUE constraint failed")
}
