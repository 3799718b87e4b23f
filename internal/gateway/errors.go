package gateway

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the gateway answers 404 for a reminder id.
var ErrNotFound = errors.New("reminder not found")

// TransportError reports an unreachable gateway or a non-2xx answer.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway %s: unexpected status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }
