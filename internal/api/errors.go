package api

import (
	"errors"
	"fmt"
)

// ErrorKind says what went wrong with a request.
type ErrorKind int

const (
	// KindNetwork covers everything before a response arrived.
	KindNetwork ErrorKind = iota
	// KindStatus is a non-2xx response.
	KindStatus
	// KindMalformed is a 2xx response whose body could not be understood.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed response"
	default:
		return "unknown"
	}
}

// TransportError is the single failure type of the client. Callers are
// expected to treat it opaquely; Status and Body are kept for logs.
type TransportError struct {
	Method string
	Path   string
	Kind   ErrorKind
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Kind)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}
