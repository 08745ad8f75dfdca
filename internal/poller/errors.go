package poller

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrMaxRetriesExceeded    = errors.New("max retries exceeded")
	ErrMaxConnectionFailures = errors.New("max connection failures exceeded")
)

const (
	ExitOK                    = 0
	ExitMaxRetries            = 1
	ExitUnauthorized          = 2
	ExitMaxConnectionFailures = 3
)

type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status: %s", e.Status)
}

func IsFatal(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrMaxRetriesExceeded) ||
		errors.Is(err, ErrMaxConnectionFailures)
}

// ExitCode maps an error returned by the main loop to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUnauthorized):
		return ExitUnauthorized
	case errors.Is(err, ErrMaxConnectionFailures):
		return ExitMaxConnectionFailures
	default:
		return ExitMaxRetries
	}
}
