package evtimer

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"braces.dev/errtrace"
)

// Detecting illegal struct copies using `go vet`
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Manager multiplexes any number of one-shot and periodic timers over a
// single blocking wait. One goroutine runs the loop with Run, any number of
// goroutines may add and cancel timers concurrently.
//
// Callbacks are invoked by the loop goroutine with no lock held, so a
// callback may add timers, cancel timers (its own included) or call Stop.
type Manager struct {
	noCopy

	mtx     sync.Mutex
	mux     Multiplexer
	reg     *registry
	running bool
	looping bool
	closed  bool

	backend      string
	evReadyNum   int
	lockOSThread bool

	log     *slog.Logger
	metrics *metrics
}

// New creates a Manager and its multiplexer.
func New(opts ...Option) (*Manager, error) {
	o := setOptions(opts...)
	m, err := newMetrics(o.metricsNamespace, o.metricsRegisterer)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("register metrics: %w", err))
	}
	mux, err := o.backend.NewMultiplexer()
	if err != nil {
		if !errors.Is(err, ErrResourceExhausted) {
			err = wrapErr(ErrResourceExhausted, "new multiplexer", err)
		}
		return nil, errtrace.Wrap(err)
	}
	return &Manager{
		mux:          mux,
		reg:          newRegistry(o.registryArrSize),
		backend:      o.backend.Name(),
		evReadyNum:   o.evReadyNum,
		lockOSThread: o.lockOSThread,
		log:          o.logger.With("backend", o.backend.Name()),
		metrics:      m,
	}, nil
}

// AddOneshot registers a timer that fires once, at least delay msec from now.
func (tm *Manager) AddOneshot(delay int64, cb func()) (TimerID, error) {
	return errtrace.Wrap2(tm.add(delay, 0, cb))
}

// AddInterval registers a timer that fires after delay msec, then every
// interval msec until cancelled. interval must be > 0.
func (tm *Manager) AddInterval(delay, interval int64, cb func()) (TimerID, error) {
	if interval <= 0 {
		return 0, invalidArgf("interval %dms must be > 0", interval)
	}
	return errtrace.Wrap2(tm.add(delay, interval, cb))
}

func (tm *Manager) add(delay, interval int64, cb func()) (TimerID, error) {
	if cb == nil {
		return 0, invalidArgf("nil callback")
	}
	if err := checkDelay(delay, interval); err != nil {
		return 0, errtrace.Wrap(err)
	}

	tm.mtx.Lock()
	defer tm.mtx.Unlock()
	if tm.closed {
		return 0, errtrace.Wrap(ErrClosed)
	}
	src, err := tm.mux.NewSource(delay, interval)
	if err != nil {
		return 0, errtrace.Wrap(err)
	}
	if err = tm.mux.Register(src); err != nil {
		src.Close()
		return 0, errtrace.Wrap(err)
	}
	t := &timer{
		id:       tm.reg.nextID(),
		src:      src,
		cb:       cb,
		periodic: interval > 0,
		interval: interval,
	}
	tm.reg.insert(t)
	tm.metrics.added.Inc()
	tm.metrics.timers.Inc()
	tm.log.Debug("timer added",
		slog.Uint64("id", uint64(t.id)),
		slog.Int("handle", int(src.Handle())),
		slog.Int64("delay_ms", delay),
		slog.Int64("interval_ms", interval),
	)
	return t.id, nil
}

// Cancel removes the timer. Unknown ids, including timers that already
// fired or were cancelled, are ignored. Cancel does not wait for a callback
// that is running concurrently, but no expiration is dispatched for id once
// it returns.
func (tm *Manager) Cancel(id TimerID) {
	tm.mtx.Lock()
	defer tm.mtx.Unlock()
	t := tm.reg.get(id)
	if t == nil {
		return
	}
	tm.removeTimer(t)
	tm.metrics.cancelled.Inc()
	tm.log.Debug("timer cancelled", slog.Uint64("id", uint64(id)))
}

// removeTimer must be called with tm.mtx held.
func (tm *Manager) removeTimer(t *timer) {
	tm.mux.Unregister(t.src)
	if err := t.src.Close(); err != nil {
		tm.log.Warn("close timer source", slog.Uint64("id", uint64(t.id)), slog.Any("error", err))
	}
	tm.reg.remove(t)
	tm.metrics.timers.Dec()
}

// Backend returns the name of the backend in use.
func (tm *Manager) Backend() string { return tm.backend }

// Len returns the number of registered timers.
func (tm *Manager) Len() int {
	tm.mtx.Lock()
	defer tm.mtx.Unlock()
	return tm.reg.len()
}

// Run is the control loop. It blocks until Stop is observed and returns nil,
// or returns an error wrapping ErrLoopFatal when the wait fails. Run may be
// called again after it returned; a concurrent second Run gets ErrRunning.
func (tm *Manager) Run() error {
	tm.mtx.Lock()
	if tm.closed {
		tm.mtx.Unlock()
		return errtrace.Wrap(ErrClosed)
	}
	if tm.looping {
		tm.mtx.Unlock()
		return errtrace.Wrap(ErrRunning)
	}
	tm.looping = true
	tm.running = true
	tm.mtx.Unlock()

	if tm.lockOSThread {
		// LockOSThread will bind the current goroutine to the current OS thread T,
		// preventing other goroutines from being scheduled onto this thread T
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	tm.log.Debug("loop started")

	err := tm.loop()

	tm.mtx.Lock()
	tm.running = false
	tm.looping = false
	tm.mtx.Unlock()

	if err != nil {
		tm.log.Error("loop failed", slog.Any("error", err))
		return errtrace.Wrap(err)
	}
	tm.log.Debug("loop stopped")
	return nil
}

func (tm *Manager) loop() error {
	ready := make([]Handle, 0, tm.evReadyNum)
	var err error
	for tm.Running() {
		ready, err = tm.mux.Wait(-1, ready)
		if err != nil {
			return wrapErr(ErrLoopFatal, "wait", err)
		}

		tm.mtx.Lock()
		for i := 0; i < len(ready) && tm.running; i++ {
			tm.dispatch(ready[i])
		}
		tm.mtx.Unlock()
	}
	return nil
}

// dispatch is called and returns with tm.mtx held, but releases it around
// the callback.
func (tm *Manager) dispatch(h Handle) {
	t := tm.reg.lookup(h)
	if t == nil {
		return // cancelled earlier in this batch
	}
	n, err := t.src.Drain()
	if err != nil {
		tm.log.Warn("drain timer source", slog.Uint64("id", uint64(t.id)), slog.Any("error", err))
		return
	}
	if n == 0 {
		// Stale readiness: the handle was reused by a newer timer after the
		// event was reported.
		return
	}
	tm.metrics.expirations.Add(float64(n))

	id, cb := t.id, t.cb
	tm.mtx.Unlock()
	tm.invoke(id, cb)
	tm.mtx.Lock()

	// t may have been cancelled by the callback or another goroutine while
	// the lock was released; only trust what the registry says now.
	if t = tm.reg.get(id); t != nil && !t.periodic {
		tm.removeTimer(t)
	}
}

func (tm *Manager) invoke(id TimerID, cb func()) {
	start := time.Now()
	defer func() {
		tm.metrics.callbackDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			tm.metrics.callbackPanics.Inc()
			tm.log.Error("timer callback panicked",
				slog.Uint64("id", uint64(id)),
				slog.Any("panic", r),
			)
		}
	}()
	tm.metrics.fired.Inc()
	cb()
}

// Running reports whether the loop is active and has not been asked to stop.
func (tm *Manager) Running() bool {
	tm.mtx.Lock()
	defer tm.mtx.Unlock()
	return tm.running
}

// Stop asks the loop to return. It wakes the multiplexer, so the loop
// notices even when no timer is registered. A callback in progress finishes
// first.
func (tm *Manager) Stop() {
	tm.mtx.Lock()
	defer tm.mtx.Unlock()
	tm.running = false
	if !tm.closed {
		tm.mux.Wakeup()
	}
}

// Close releases every remaining timer and the multiplexer. The loop must
// have returned first, otherwise ErrRunning is returned. Close is idempotent.
func (tm *Manager) Close() error {
	tm.mtx.Lock()
	defer tm.mtx.Unlock()
	if tm.closed {
		return nil
	}
	if tm.looping {
		return errtrace.Wrap(ErrRunning)
	}
	tm.closed = true

	var errs []error
	for _, t := range tm.reg.drain() {
		tm.mux.Unregister(t.src)
		if err := t.src.Close(); err != nil {
			errs = append(errs, err)
		}
		tm.metrics.timers.Dec()
	}
	if err := tm.mux.Close(); err != nil {
		errs = append(errs, err)
	}
	return errtrace.Wrap(errors.Join(errs...))
}
