// Package apperr defines the service-wide error taxonomy and its mapping
// to HTTP status codes.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP rendering.
type Kind int

const (
	InvalidArgument Kind = iota // malformed, missing, or out-of-enum input
	Unauthorized                // missing/invalid/expired token, bad credentials
	Forbidden                   // authenticated but not the resource owner
	NotFound                    // no matching record
	AlreadyExists               // uniqueness violation
	Upstream                    // model service failure or empty output
	Internal                    // update reported zero effect unexpectedly
)

// Error carries a kind and a human-readable detail surfaced to the caller.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string { return e.Detail }

// New returns an Error of the given kind.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf is New with Sprintf formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Status maps an error to its HTTP status code. Anything that is not an
// *Error renders as 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case InvalidArgument, AlreadyExists:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Write renders err as a JSON error response. Unclassified errors are not
// echoed to the caller.
func Write(w http.ResponseWriter, err error) {
	detail := "internal error"
	var e *Error
	if errors.As(err, &e) {
		detail = e.Detail
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(err))
	json.NewEncoder(w).Encode(map[string]string{"error": detail})
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
