package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for retry decisions. It is set once at the point
// where the failure is observed (HTTP client, timeout wrapper) and consumed
// uniformly by the retry predicate.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindNetwork
	KindTimeout
	KindServer
	KindRateLimit
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server"
	case KindRateLimit:
		return "rate_limit"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Op     string
	Status int // HTTP status when the failure came from a response, else 0
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a classification and operation name.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// FromStatus classifies a non-2xx HTTP response.
func FromStatus(op string, status int) *Error {
	var kind Kind
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusTooManyRequests:
		kind = KindRateLimit
	case status >= 500:
		kind = KindServer
	default:
		kind = KindUnknown
	}
	return &Error{
		Kind:   kind,
		Op:     op,
		Status: status,
		Err:    fmt.Errorf("unexpected status %d", status),
	}
}

// KindOf extracts the classification from err, or KindUnknown when the chain
// carries no classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether another attempt can reasonably succeed.
// Auth and validation failures are final; anything unclassified is final too.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout, KindServer, KindRateLimit:
		return true
	default:
		return false
	}
}
