package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure classes the service can report. Every
// kind carries a stable wire code and an HTTP status; handlers never invent
// ad-hoc status/message pairs.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthenticated
	KindInvalidCredential
	KindNotFound
	KindConflict
	KindMissingRefreshToken
	KindInvalidRefreshToken
	KindRefreshTokenMismatch
	KindForbidden
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match two *Errors by kind, so sentinel-style checks
// (errors.Is(err, apperr.RefreshTokenMismatch("")) ) work without comparing
// messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Code() string {
	switch e.Kind {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindInvalidCredential:
		return "INVALID_CREDENTIAL"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindMissingRefreshToken:
		return "MISSING_REFRESH_TOKEN"
	case KindInvalidRefreshToken:
		return "INVALID_REFRESH_TOKEN"
	case KindRefreshTokenMismatch:
		return "REFRESH_TOKEN_MISMATCH"
	case KindForbidden:
		return "FORBIDDEN"
	default:
		return "INTERNAL"
	}
}

func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidCredential, KindMissingRefreshToken, KindInvalidRefreshToken:
		return http.StatusUnauthorized
	case KindRefreshTokenMismatch, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error      { return newError(KindValidation, message) }
func Unauthenticated(message string) *Error { return newError(KindUnauthenticated, message) }
func InvalidCredential(message string) *Error {
	return newError(KindInvalidCredential, message)
}
func NotFound(message string) *Error  { return newError(KindNotFound, message) }
func Conflict(message string) *Error  { return newError(KindConflict, message) }
func Forbidden(message string) *Error { return newError(KindForbidden, message) }
func MissingRefreshToken(message string) *Error {
	return newError(KindMissingRefreshToken, message)
}
func InvalidRefreshToken(message string) *Error {
	return newError(KindInvalidRefreshToken, message)
}
func RefreshTokenMismatch(message string) *Error {
	return newError(KindRefreshTokenMismatch, message)
}

// Internal wraps an unexpected error. The cause is kept for logs; the wire
// representation never includes it.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// From returns err as an *Error, downgrading anything outside the taxonomy
// to a generic internal error.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal error", err)
}
