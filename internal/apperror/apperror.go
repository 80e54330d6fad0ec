// Package apperror defines the error kinds surfaced to callers of the access
// core. Every rejection carries a stable Kind and a human-readable reason;
// the wrapped cause is kept for logs and never rendered to clients.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindUnauthenticated        Kind = "UNAUTHENTICATED"
	KindForbidden              Kind = "FORBIDDEN"
	KindRateLimited            Kind = "RATE_LIMITED"
	KindQuotaExceeded          Kind = "QUOTA_EXCEEDED"
	KindNoActiveSubscription   Kind = "NO_ACTIVE_SUBSCRIPTION"
	KindNotFound               Kind = "NOT_FOUND"
	KindPersistenceUnavailable Kind = "PERSISTENCE_UNAVAILABLE"
	KindInvalidInput           Kind = "INVALID_INPUT"
	KindConflict               Kind = "CONFLICT"
)

type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Reason + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of reason or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

var (
	ErrUnauthenticated        = New(KindUnauthenticated, "authentication required")
	ErrForbidden              = New(KindForbidden, "insufficient permissions")
	ErrRateLimited            = New(KindRateLimited, "rate limit exceeded")
	ErrQuotaExceeded          = New(KindQuotaExceeded, "subscription limit reached, upgrade your plan")
	ErrNoActiveSubscription   = New(KindNoActiveSubscription, "no active subscription")
	ErrNotFound               = New(KindNotFound, "resource not found")
	ErrPersistenceUnavailable = New(KindPersistenceUnavailable, "service temporarily unavailable")
	ErrInvalidInput           = New(KindInvalidInput, "invalid input")
	ErrConflict               = New(KindConflict, "resource already exists")
)

// As extracts the *Error from err; ok is false for errors outside the taxonomy.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindQuotaExceeded, KindNoActiveSubscription:
		return http.StatusPaymentRequired
	case KindNotFound:
		return http.StatusNotFound
	case KindPersistenceUnavailable:
		return http.StatusServiceUnavailable
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
