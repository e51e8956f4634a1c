package analysis

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when there is nothing to read, e.g. exporting an empty history.
var ErrNotFound = errors.New("not found")

// ErrMissingCredential marks a ConfigurationError: the process must not serve traffic.
var ErrMissingCredential = errors.New("mandatory credential missing")

// ClientInputError is a recoverable caller mistake.
type ClientInputError struct {
	Msg string
}

func (e *ClientInputError) Error() string { return e.Msg }

func InvalidInput(format string, args ...any) error {
	return &ClientInputError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamFailureError surfaces a fatal failure of the primary completion adapter.
type UpstreamFailureError struct {
	Service    string
	StatusCode int
	Msg        string
}

func (e *UpstreamFailureError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Service, e.StatusCode, e.Msg)
	}
	return fmt.Sprintf("%s error: %s", e.Service, e.Msg)
}

func IsClientInput(err error) bool {
	var ce *ClientInputError
	return errors.As(err, &ce)
}

func IsUpstreamFailure(err error) bool {
	var ue *UpstreamFailureError
	return errors.As(err, &ue)
}
