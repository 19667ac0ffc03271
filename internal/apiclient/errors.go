package apiclient

import (
	"errors"
	"net/http"
)

// FailureKind classifies why a remote call did not succeed.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureNetwork     FailureKind = "NetworkError"
	FailureAPI         FailureKind = "ApiError"
	FailureAuthExpired FailureKind = "AuthExpired"
)

// Error is the error form of a failed envelope.
type Error struct {
	Kind    FailureKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on kind so errors.Is(err, ErrAuthExpired) works for any message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// HTTPStatus maps the failure onto the status the console returns.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case FailureAuthExpired:
		return http.StatusUnauthorized
	case FailureAPI:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
	}
	return http.StatusBadGateway
}

// ErrorCode implements errorutil.StatusCoder.
func (e *Error) ErrorCode() string {
	switch e.Kind {
	case FailureAuthExpired:
		return "AUTH_EXPIRED"
	case FailureNetwork:
		return "UPSTREAM_UNREACHABLE"
	}
	return "UPSTREAM_FAILED"
}

// Sentinels for errors.Is checks.
var (
	ErrNetwork     = &Error{Kind: FailureNetwork}
	ErrAPI         = &Error{Kind: FailureAPI}
	ErrAuthExpired = &Error{Kind: FailureAuthExpired}
)

// IsAuthExpired reports whether err carries an AuthExpired failure.
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}
