package backend

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a single resource cannot be located, including
// after the collection fallback.
var ErrNotFound = errors.New("resource not found")

// Kind classifies a failed backend exchange.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindNotJSON
	KindDecode
	KindAuth
	KindNotFound
	KindServer
	KindStatus
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindNotJSON:
		return "not_json"
	case KindDecode:
		return "decode"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindStatus:
		return "status"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Error describes a backend call that did not produce the expected JSON document.
type Error struct {
	Kind    Kind
	Method  string
	Path    string
	Status  int
	Message string
	// JSON reports whether the response declared an application/json body.
	JSON bool
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("backend %s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsKind reports whether err is a backend error of kind k.
func IsKind(err error, k Kind) bool {
	be, ok := AsError(err)
	return ok && be.Kind == k
}

// IsNonJSON reports whether the backend answered with something other than JSON.
// Callers use it to treat a half-deployed backend as "feature not available".
func IsNonJSON(err error) bool {
	be, ok := AsError(err)
	if !ok {
		return false
	}
	if be.Kind == KindNotJSON {
		return true
	}
	return be.Status != 0 && !be.JSON && be.Kind != KindAuth
}
