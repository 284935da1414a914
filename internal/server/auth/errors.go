package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authgate/internal/common"
)

// ErrorCode names the validation step that rejected a token. Codes are for
// logs only; clients always see a generic rejection.
type ErrorCode string

const (
	ErrMalformed        ErrorCode = "MALFORMED"
	ErrInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	ErrInvalidIssuer    ErrorCode = "INVALID_ISSUER"
	ErrInvalidAudience  ErrorCode = "INVALID_AUDIENCE"
	ErrExpired          ErrorCode = "EXPIRED"
	ErrNotYetValid      ErrorCode = "NOT_YET_VALID"
	ErrMissingToken     ErrorCode = "MISSING_TOKEN"
)

// ValidationError is returned by TokenService.Validate. Every value matches
// common.ErrTokenRejected with errors.Is.
type ValidationError struct {
	Code     ErrorCode
	Message  string
	Internal error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Internal
}

func (e *ValidationError) Is(target error) bool {
	return target == common.ErrTokenRejected
}

func NewValidationError(code ErrorCode, message string, internal error) *ValidationError {
	return &ValidationError{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

// ErrorCodeOf extracts the code from a validation error, "UNKNOWN" otherwise.
func ErrorCodeOf(err error) string {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return string(valErr.Code)
	}
	return "UNKNOWN"
}
