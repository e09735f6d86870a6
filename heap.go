package evtimer

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"braces.dev/errtrace"
)

var errHeapClosed = errors.New("heap multiplexer closed")

type heapBackend struct{}

// HeapBackend returns the portable backend: a 4-ary min-heap of deadlines
// and a wake channel the wait loop selects on, with a timeout equal to the
// earliest deadline. It is available on every platform.
func HeapBackend() Backend { return heapBackend{} }

func (heapBackend) Name() string { return "heap" }

func (heapBackend) NewMultiplexer() (Multiplexer, error) {
	return newTimer4Heap(defaultHeapInitSize), nil
}

// heapSource is one entry of the 4-heap.
type heapSource struct {
	noCopy

	th *timer4Heap
	h  Handle

	expiredAt time.Time // carries the monotonic reading of time.Now()
	interval  time.Duration

	index       int // position in fheap, -1 when not scheduled
	expirations uint64
	registered  bool
	queued      bool
	closed      bool
}

func (s *heapSource) Handle() Handle { return s.h }

func (s *heapSource) Drain() (uint64, error) {
	s.th.mtx.Lock()
	n := s.expirations
	s.expirations = 0
	s.th.mtx.Unlock()
	return n, nil
}

func (s *heapSource) Close() error {
	th := s.th
	th.mtx.Lock()
	defer th.mtx.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.registered = false
	if s.index >= 0 {
		th.remove(s.index)
	}
	return nil
}

// timer4Heap is the portable Multiplexer.
type timer4Heap struct {
	noCopy

	mtx        sync.Mutex
	fheap      []*heapSource
	readyq     []*heapSource // expired, in expiry order
	nextHandle Handle
	closed     bool

	wake    chan struct{} // cap 1, re-evaluate the wait timeout
	wakeup  atomic.Bool   // Wakeup was called
	closing chan struct{}
}

func newTimer4Heap(initCap int) *timer4Heap {
	if initCap < 1 {
		panic("timer4Heap initCap invalid!")
	}
	return &timer4Heap{
		fheap:   make([]*heapSource, 0, initCap),
		wake:    make(chan struct{}, 1),
		closing: make(chan struct{}),
	}
}

func (th *timer4Heap) NewSource(delay, interval int64) (TimerSource, error) {
	if err := checkDelay(delay, interval); err != nil {
		return nil, errtrace.Wrap(err)
	}
	th.mtx.Lock()
	defer th.mtx.Unlock()
	if th.closed {
		return nil, wrapErr(ErrResourceExhausted, "new source", errHeapClosed)
	}
	th.nextHandle++
	s := &heapSource{
		th:        th,
		h:         th.nextHandle,
		expiredAt: time.Now().Add(time.Duration(delay) * time.Millisecond),
		interval:  time.Duration(interval) * time.Millisecond,
	}
	th.push(s)
	if s.index == 0 {
		th.signal()
	}
	return s, nil
}

func (th *timer4Heap) Register(src TimerSource) error {
	s, ok := src.(*heapSource)
	if !ok || s.th != th {
		return invalidArgf("source %d does not belong to this multiplexer", src.Handle())
	}
	th.mtx.Lock()
	defer th.mtx.Unlock()
	if th.closed {
		return wrapErr(ErrResourceExhausted, "register", errHeapClosed)
	}
	if s.closed {
		return invalidArgf("source %d is closed", s.h)
	}
	s.registered = true
	if s.expirations > 0 {
		th.enqueue(s)
		th.signal()
	}
	return nil
}

func (th *timer4Heap) Unregister(src TimerSource) {
	s, ok := src.(*heapSource)
	if !ok || s.th != th {
		return
	}
	th.mtx.Lock()
	s.registered = false
	th.mtx.Unlock()
}

func (th *timer4Heap) Wait(timeout int, ready []Handle) ([]Handle, error) {
	ready = ready[:0]
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(time.Duration(timeout) * time.Millisecond)
	}
	var t *time.Timer
	defer func() {
		if t != nil {
			t.Stop()
		}
	}()
	for {
		th.mtx.Lock()
		if th.closed {
			th.mtx.Unlock()
			return ready, errtrace.Wrap(errHeapClosed)
		}
		now := time.Now()
		th.handleExpired(now)
		ready = th.collect(ready)
		if len(ready) > 0 {
			th.mtx.Unlock()
			return ready, nil
		}
		wait := time.Duration(-1)
		if len(th.fheap) > 0 {
			wait = th.fheap[0].expiredAt.Sub(now)
		}
		if timeout >= 0 {
			left := deadline.Sub(now)
			if left <= 0 {
				th.mtx.Unlock()
				return ready, nil
			}
			if wait < 0 || left < wait {
				wait = left
			}
		}
		th.mtx.Unlock()

		if wait < 0 {
			select {
			case <-th.wake:
			case <-th.closing:
			}
		} else {
			if t == nil {
				t = time.NewTimer(wait)
			} else {
				t.Reset(wait)
			}
			select {
			case <-th.wake:
			case <-th.closing:
			case <-t.C:
			}
			t.Stop()
		}
		if th.wakeup.Swap(false) {
			return ready, nil
		}
	}
}

func (th *timer4Heap) Wakeup() {
	th.wakeup.Store(true)
	th.signal()
}

func (th *timer4Heap) Close() error {
	th.mtx.Lock()
	defer th.mtx.Unlock()
	if th.closed {
		return nil
	}
	th.closed = true
	close(th.closing)
	for _, s := range th.fheap {
		s.index = -1
	}
	th.fheap = nil
	th.readyq = nil
	return nil
}

// signal never blocks; one pending token is enough to re-evaluate.
func (th *timer4Heap) signal() {
	select {
	case th.wake <- struct{}{}:
	default:
	}
}

// handleExpired pops every source due at now. Periodic sources are pushed
// back with their next deadline; missed ticks are counted, not queued.
func (th *timer4Heap) handleExpired(now time.Time) {
	for len(th.fheap) > 0 {
		s := th.fheap[0]
		if s.expiredAt.After(now) {
			break
		}
		th.remove(0)
		if s.interval > 0 {
			n := 1 + uint64(now.Sub(s.expiredAt)/s.interval)
			s.expirations += n
			s.expiredAt = s.expiredAt.Add(time.Duration(n) * s.interval)
			th.push(s)
		} else {
			s.expirations++
		}
		if s.registered {
			th.enqueue(s)
		}
	}
}

func (th *timer4Heap) enqueue(s *heapSource) {
	if s.queued {
		return
	}
	s.queued = true
	th.readyq = append(th.readyq, s)
}

func (th *timer4Heap) collect(ready []Handle) []Handle {
	for i, s := range th.readyq {
		s.queued = false
		th.readyq[i] = nil
		if s.closed || !s.registered || s.expirations == 0 {
			continue
		}
		ready = append(ready, s.h)
	}
	th.readyq = th.readyq[:0]
	return ready
}

func (th *timer4Heap) size() int {
	return len(th.fheap)
}

func (th *timer4Heap) push(s *heapSource) {
	s.index = len(th.fheap)
	th.fheap = append(th.fheap, s)
	th.shiftUp(s.index)
}

func (th *timer4Heap) remove(index int) {
	s := th.fheap[index]
	last := len(th.fheap) - 1
	if index != last {
		th.swap(index, last)
	}
	th.fheap[last] = nil
	th.fheap = th.fheap[:last]
	s.index = -1
	if index != last {
		th.shiftDown(index)
		th.shiftUp(index)
	}
}

func (th *timer4Heap) less(i, j int) bool {
	return th.fheap[i].expiredAt.Before(th.fheap[j].expiredAt)
}

func (th *timer4Heap) swap(i, j int) {
	th.fheap[i], th.fheap[j] = th.fheap[j], th.fheap[i]
	th.fheap[i].index = i
	th.fheap[j].index = j
}

func (th *timer4Heap) shiftUp(index int) {
	parent := (index - 1) / 4

	for index > 0 && th.less(index, parent) {
		th.swap(index, parent)
		index = parent
		parent = (index - 1) / 4
	}
}

func (th *timer4Heap) shiftDown(index int) {
	size := len(th.fheap)

	for {
		smallest := index
		childStart := 4*index + 1
		childEnd := childStart + 4

		if childStart >= size {
			break
		}
		for i := childStart; i < childEnd && i < size; i++ {
			if th.less(i, smallest) {
				smallest = i
			}
		}
		if smallest == index {
			break
		}
		th.swap(index, smallest)
		index = smallest
	}
}
