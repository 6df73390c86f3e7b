package dto

import (
	"net/http"
	"strings"
)

// Transport level error codes. Domain codes come from shared.DomainError.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInvalidToken    = "INVALID_TOKEN"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeInvalidToken:  http.StatusBadRequest,
	ErrCodeTokenExpired:  http.StatusBadRequest,
	"INVALID_INPUT":      http.StatusBadRequest,
	"EMPTY_CART":         http.StatusBadRequest,
	"INSUFFICIENT_STOCK": http.StatusBadRequest,
	"INVALID_QUANTITY":   http.StatusBadRequest,
	"INVALID_STATUS":     http.StatusBadRequest,
	"INVALID_STATE":      http.StatusBadRequest,
	"OTP_EXPIRED":        http.StatusBadRequest,
	"INVALID_OTP":        http.StatusBadRequest,
	"OTP_LOCKED":         http.StatusBadRequest,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,

	ErrCodeForbidden: http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	"ALREADY_EXISTS": http.StatusConflict,
	"CONFLICT":       http.StatusConflict,

	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	"STORAGE_TIMEOUT": http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status for an error code. Field level
// validation codes (INVALID_*) are client errors; anything unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
