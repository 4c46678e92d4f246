package types

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrRequestNotFound = errors.New("donation request not found")
	ErrBlogNotFound    = errors.New("blog not found")
	ErrFundNotFound    = errors.New("fund not found")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access denied")
	ErrUserBlocked     = errors.New("user blocked")

	// ErrRequestNotClaimable is returned when a donate claim races or
	// targets a request that already left pending.
	ErrRequestNotClaimable = errors.New("donation request is not pending")

	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrVerificationFailed   = errors.New("payment verification failed")
	ErrAmountMismatch       = errors.New("amount does not match verified payment")
)

// ValidationError carries per-field messages back to the caller.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
