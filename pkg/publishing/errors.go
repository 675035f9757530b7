package publishing

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is returned when a publish response carries no overall
// status or one outside published/publishing/pending.
var ErrInvalidResponse = errors.New("invalid SIS sync status")

// TransportError wraps a failed network call
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
