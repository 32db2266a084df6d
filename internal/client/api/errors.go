package api

import (
	"errors"
	"fmt"

	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
)

var (
	// ErrSessionExpired: the access token was rejected and could not be
	// refreshed. The user has to log in again.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoWorkspace: the account has no workspace to scope editor calls to.
	ErrNoWorkspace = errors.New("no workspace available for this account")
)

// RequestError is a non-2xx response other than a version conflict.
type RequestError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ConflictError is returned when a project write is based on a stale
// version. ServerVersion and ServerUpdatedAt describe the copy the server has.
type ConflictError struct {
	ServerVersion   int
	ServerUpdatedAt string
	Message         string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (server version %d)", e.Message, e.ServerVersion)
}

func sessionExpired(cause error) error {
	return &RequestError{StatusCode: 401, Message: "Session expired", Err: errors.Join(ErrSessionExpired, cause)}
}

func noWorkspace() error {
	return &RequestError{StatusCode: 400, Message: "No workspace available for this account.", Err: ErrNoWorkspace}
}

// Kind is the category of an error returned by this package.
type Kind int

const (
	KindNone Kind = iota
	KindConflict
	KindSessionExpired
	KindNoWorkspace
	KindUnauthorized
	KindRequestFailed
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConflict:
		return "conflict"
	case KindSessionExpired:
		return "session-expired"
	case KindNoWorkspace:
		return "no-workspace"
	case KindUnauthorized:
		return "unauthorized"
	case KindRequestFailed:
		return "request-failed"
	default:
		return "transport"
	}
}

// Classify maps err to its Kind. Anything that is not one of this package's
// error values (DNS failure, reset connection, context cancellation) is
// KindTransport.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return KindConflict
	}
	if errors.Is(err, ErrSessionExpired) {
		return KindSessionExpired
	}
	if errors.Is(err, ErrNoWorkspace) {
		return KindNoWorkspace
	}
	if errors.Is(err, common.ErrorUnauthorized) {
		return KindUnauthorized
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return KindRequestFailed
	}
	return KindTransport
}
