package ephem

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable is matched by every *ProviderUnavailableError.
var ErrProviderUnavailable = errors.New("ephemeris provider unavailable")

// ProviderUnavailableError reports that a provider could not answer for one
// body at one instant.
type ProviderUnavailableError struct {
	Provider string
	Body     string
	Time     time.Time
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	msg := fmt.Sprintf("%s: no state for %s at %s", e.Provider, e.Body, e.Time.UTC().Format(time.RFC3339))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

func (e *ProviderUnavailableError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

var (
	errUnsupportedBody = errors.New("unsupported body")
	errOutOfRange      = errors.New("instant outside supported range")
)

func unavailable(provider, body string, t time.Time, err error) error {
	return &ProviderUnavailableError{Provider: provider, Body: body, Time: t, Err: err}
}
