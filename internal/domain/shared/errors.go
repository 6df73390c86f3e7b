package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code.
// This lets callers match a detailed error against its sentinel with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of the error with an extra detail attached
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized      = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden         = NewDomainError("FORBIDDEN", "Access denied")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrEmptyCart         = NewDomainError("EMPTY_CART", "Cart is empty")
	ErrInvalidQuantity   = NewDomainError("INVALID_QUANTITY", "Quantity must be greater than 0")
	ErrInvalidStatus     = NewDomainError("INVALID_STATUS", "Invalid status")
	ErrStorageTimeout    = NewDomainError("STORAGE_TIMEOUT", "Storage did not respond in time")
)

// NewInsufficientStockError reports which product lacks stock and how much is left
func NewInsufficientStockError(productID uuid.UUID, name string, available, requested int) *DomainError {
	return &DomainError{
		Code: ErrInsufficientStock.Code,
		Message: fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d",
			name, available, requested),
		Details: map[string]any{
			"product_id": productID.String(),
			"product":    name,
			"available":  available,
			"requested":  requested,
		},
	}
}

// NewValidationError builds an INVALID_INPUT error listing every failed rule
func NewValidationError(message string, violations []string) *DomainError {
	err := NewDomainError(ErrInvalidInput.Code, message)
	if len(violations) > 0 {
		err.Details = map[string]any{"errors": violations}
	}
	return err
}
