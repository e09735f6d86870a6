package evtimer

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestMultiplexer(t *testing.T, b Backend) Multiplexer {
	t.Helper()
	mux, err := b.NewMultiplexer()
	if err != nil {
		t.Fatalf("NewMultiplexer: %v", err)
	}
	t.Cleanup(func() {
		if err := mux.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return mux
}

func TestMultiplexer_WaitTimeout(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b Backend) {
		mux := newTestMultiplexer(t, b)

		start := time.Now()
		ready, err := mux.Wait(30, nil)
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
		if len(ready) != 0 {
			t.Errorf("ready = %v, want none", ready)
		}
		if d := time.Since(start); d < 25*time.Millisecond {
			t.Errorf("Wait returned after %v, want ~30ms", d)
		}
	})
}

func TestMultiplexer_Ready(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b Backend) {
		mux := newTestMultiplexer(t, b)

		fast, err := mux.NewSource(10, 0)
		if err != nil {
			t.Fatalf("NewSource: %v", err)
		}
		defer fast.Close()
		slow, err := mux.NewSource(60000, 0)
		if err != nil {
			t.Fatalf("NewSource: %v", err)
		}
		defer slow.Close()
		for _, s := range []TimerSource{fast, slow} {
			if err := mux.Register(s); err != nil {
				t.Fatalf("Register: %v", err)
			}
		}

		ready, err := mux.Wait(-1, make([]Handle, 0, 4))
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
		if diff := cmp.Diff([]Handle{fast.Handle()}, ready); diff != "" {
			t.Errorf("ready mismatch (-want +got):\n%s", diff)
		}
		if n, err := fast.Drain(); err != nil || n != 1 {
			t.Errorf("Drain = %d, %v; want 1, nil", n, err)
		}
		if n, err := slow.Drain(); err != nil || n != 0 {
			t.Errorf("Drain slow = %d, %v; want 0, nil", n, err)
		}
	})
}

func TestMultiplexer_Unregister(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b Backend) {
		mux := newTestMultiplexer(t, b)

		src, err := mux.NewSource(0, 5)
		if err != nil {
			t.Fatalf("NewSource: %v", err)
		}
		if err := mux.Register(src); err != nil {
			t.Fatalf("Register: %v", err)
		}
		mux.Unregister(src)
		mux.Unregister(src)

		ready, err := mux.Wait(30, nil)
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
		if len(ready) != 0 {
			t.Errorf("unregistered source reported: %v", ready)
		}

		if err := src.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		mux.Unregister(src)
		if err := src.Close(); err != nil {
			t.Errorf("second Close: %v", err)
		}
	})
}

func TestMultiplexer_Wakeup(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b Backend) {
		mux := newTestMultiplexer(t, b)

		done := make(chan error, 1)
		go func() {
			ready, err := mux.Wait(-1, nil)
			if err == nil && len(ready) != 0 {
				err = errors.New("wakeup reported as a ready handle")
			}
			done <- err
		}()
		time.Sleep(20 * time.Millisecond)
		mux.Wakeup()
		mux.Wakeup()

		select {
		case err := <-done:
			if err != nil {
				t.Fatal(err)
			}
		case <-time.After(time.Second):
			t.Fatal("Wakeup did not interrupt Wait")
		}
	})
}

func TestMultiplexer_InvalidSource(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b Backend) {
		mux := newTestMultiplexer(t, b)

		for _, c := range []struct{ delay, interval int64 }{
			{-1, 0},
			{0, -1},
			{MaxDelay + 1, 0},
			{0, MaxDelay + 1},
		} {
			if _, err := mux.NewSource(c.delay, c.interval); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("NewSource(%d, %d) = %v, want ErrInvalidArgument", c.delay, c.interval, err)
			}
		}
	})
}
