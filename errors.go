package evtimer

import (
	"fmt"

	"braces.dev/errtrace"
)

// Error is a string type that implements the error interface.
type Error string

func (s Error) Error() string { return string(s) }

const (
	// ErrInvalidArgument is returned for degenerate caller input: negative or
	// out of range delays, a zero interval for a periodic timer or a nil callback.
	ErrInvalidArgument Error = "invalid argument"

	// ErrResourceExhausted is returned when the OS refuses to allocate a timer,
	// a multiplexer registration or the multiplexer itself.
	ErrResourceExhausted Error = "resource exhausted"

	// ErrLoopFatal is returned from Run when the blocking wait fails for a reason
	// other than signal interruption. The manager should not be used anymore.
	ErrLoopFatal Error = "fatal loop error"

	// ErrClosed is returned by operations on a closed manager.
	ErrClosed Error = "manager closed"

	// ErrRunning is returned by Close and Run while the loop is active.
	ErrRunning Error = "loop is running"
)

// wrapErr wraps err with sentinel and an operation name, e.g.
// "resource exhausted: timerfd_create: too many open files".
func wrapErr(sentinel error, op string, err error) error {
	if err == nil {
		return errtrace.Wrap(fmt.Errorf("%w: %s", sentinel, op))
	}
	return errtrace.Wrap(fmt.Errorf("%w: %s: %w", sentinel, op, err))
}

func invalidArgf(format string, args ...any) error {
	return errtrace.Wrap(fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...)))
}
