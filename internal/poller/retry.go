package poller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
)

type failureClass int

const (
	failureTransient failureClass = iota
	failureConnectionDrop
	failureUnauthorized
)

type retryAction int

const (
	retryNow retryAction = iota
	retryAfterDelay
	giveUp
)

// classify sorts a failed fetch. Connection drops are the peer hanging up on
// an otherwise healthy server, which happens routinely around long-polls.
func classify(err error) failureClass {
	if statusErr, ok := errors.AsType[*StatusError](err); ok {
		if statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden {
			return failureUnauthorized
		}
		return failureTransient
	}

	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE):
		return failureConnectionDrop
	default:
		return failureTransient
	}
}

// retryState tracks the two independent failure budgets of one fetch cycle.
// Transient failures consume retries and are followed by a delay; connection
// drops have their own ceiling and are retried at once.
type retryState struct {
	maxRetries      int
	maxConnFailures int
	retries         int
	connFailures    int
}

func newRetryState(maxRetries, maxConnFailures int) *retryState {
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &retryState{
		maxRetries:      maxRetries,
		maxConnFailures: maxConnFailures,
	}
}

func (s *retryState) next(class failureClass, cause error) (retryAction, error) {
	switch class {
	case failureUnauthorized:
		return giveUp, fmt.Errorf("%w: %w", ErrUnauthorized, cause)

	case failureConnectionDrop:
		s.connFailures++
		if s.connFailures > s.maxConnFailures {
			return giveUp, fmt.Errorf("%w (%d): %w", ErrMaxConnectionFailures, s.connFailures, cause)
		}
		return retryNow, nil

	default:
		s.retries++
		if s.retries >= s.maxRetries {
			return giveUp, fmt.Errorf("%w (%d attempts): %w", ErrMaxRetriesExceeded, s.retries, cause)
		}
		return retryAfterDelay, nil
	}
}

func (s *retryState) reset() {
	s.retries = 0
	s.connFailures = 0
}
