package astro

import (
	"errors"
	"fmt"
)

// ErrInvalidObserver is matched by every *InvalidObserverError.
var ErrInvalidObserver = errors.New("invalid observer")

// InvalidObserverError describes an observer parameter outside its bounds
// or one that could not be parsed.
type InvalidObserverError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidObserverError) Error() string {
	return fmt.Sprintf("invalid observer %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is match ErrInvalidObserver.
func (e *InvalidObserverError) Is(target error) bool {
	return target == ErrInvalidObserver
}
