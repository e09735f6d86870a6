package evtimer

import (
	"math"
	"time"
)

// MaxDelay is the largest delay or interval, in milliseconds, a timer
// source accepts. Anything larger does not fit a time.Duration.
const MaxDelay int64 = math.MaxInt64 / int64(time.Millisecond)

// Handle identifies a pollable timer source inside its Multiplexer.
// For the epoll backend it is the timerfd.
type Handle int

// TimerSource is a monotonic, optionally repeating, expiration clock that
// can be monitored by the Multiplexer of the same Backend.
type TimerSource interface {
	// Handle returns the pollable handle. Valid until Close.
	Handle() Handle

	// Drain returns the number of expirations since the last call and resets
	// it. Missed ticks are coalesced into a single count, 0 means nothing
	// is pending.
	Drain() (uint64, error)

	// Close cancels future expirations and releases the OS resource.
	Close() error
}

// Multiplexer waits on the readiness of many timer sources with one
// blocking call.
type Multiplexer interface {
	// NewSource creates a source, owned by the caller, firing after delay
	// msec, then every interval msec if interval > 0. Only sources created
	// by a Multiplexer may be registered with it.
	NewSource(delay, interval int64) (TimerSource, error)

	// Register begins monitoring src for readability.
	Register(src TimerSource) error

	// Unregister stops monitoring src. Unregistering a source twice, or one
	// that has already been closed, is a no-op.
	Unregister(src TimerSource)

	// Wait blocks until at least one registered source is ready, Wakeup is
	// called or timeout (msec) elapses. A negative timeout blocks without
	// limit. Ready handles are appended to ready[:0] in the order they were
	// reported. Interruption by a signal is retried.
	Wait(timeout int, ready []Handle) ([]Handle, error)

	// Wakeup interrupts a blocked Wait. Thread-safe.
	Wakeup()

	// Close releases the multiplexer. Registered sources are not closed.
	Close() error
}

// Backend is the platform capability behind a Manager: it creates the
// Multiplexer, which in turn creates the timer sources it can monitor.
type Backend interface {
	// Name is used in logs.
	Name() string

	NewMultiplexer() (Multiplexer, error)
}

func checkDelay(delay, interval int64) error {
	if delay < 0 || delay > MaxDelay {
		return invalidArgf("delay %dms out of range [0, %d]", delay, MaxDelay)
	}
	if interval < 0 || interval > MaxDelay {
		return invalidArgf("interval %dms out of range [0, %d]", interval, MaxDelay)
	}
	return nil
}
