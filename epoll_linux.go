//go:build linux

package evtimer

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"braces.dev/errtrace"
	"golang.org/x/sys/unix"
)

var (
	notifyV      int64 = 1
	notifyWriteV       = (*(*[8]byte)(unsafe.Pointer(&notifyV)))[:]
)

// evPoll is the epoll Multiplexer. An eventfd registered next to the timer
// sources lets Wakeup interrupt a blocked epoll_wait.
type evPoll struct {
	noCopy

	efd int // epoll fd
	nfd int // eventfd

	notified atomic.Int32 // used to avoid duplicate writes to the eventfd
	closed   atomic.Bool

	events []unix.EpollEvent
}

func newEvPoll(evReadyNum int) (*evPoll, error) {
	if evReadyNum < 1 {
		return nil, invalidArgf("event batch size %d < 1", evReadyNum)
	}
	efd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, wrapErr(ErrResourceExhausted, "epoll_create1", err)
	}
	// since Linux 2.6.27
	nfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(efd)
		return nil, wrapErr(ErrResourceExhausted, "eventfd", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(nfd)}
	if err = unix.EpollCtl(efd, unix.EPOLL_CTL_ADD, nfd, &ev); err != nil {
		unix.Close(nfd)
		unix.Close(efd)
		return nil, wrapErr(ErrResourceExhausted, "epoll_ctl add eventfd", err)
	}
	return &evPoll{
		efd:    efd,
		nfd:    nfd,
		events: make([]unix.EpollEvent, evReadyNum), // NOT make(x, len, cap)
	}, nil
}

func (*evPoll) NewSource(delay, interval int64) (TimerSource, error) {
	src, err := newTimerfdSource(delay, interval)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return src, nil
}

func (ep *evPoll) Register(src TimerSource) error {
	fd := int(src.Handle())
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(ep.efd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return wrapErr(ErrResourceExhausted, "epoll_ctl add", err)
	}
	return nil
}

func (ep *evPoll) Unregister(src TimerSource) {
	// A closed fd has already left the epoll set, and its number may belong
	// to another source by now.
	if tfd, ok := src.(*timerfdSource); ok && tfd.closed.Load() {
		return
	}
	// The event argument is ignored and can be NULL (but see `man 2 epoll_ctl` BUGS)
	// kernel versions > 2.6.9
	_ = unix.EpollCtl(ep.efd, unix.EPOLL_CTL_DEL, int(src.Handle()), nil) // ENOENT/EBADF are fine
}

func (ep *evPoll) Wait(timeout int, ready []Handle) ([]Handle, error) {
	ready = ready[:0]
	for {
		nfds, err := unix.EpollWait(ep.efd, ep.events, timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return ready, errtrace.Wrap(errors.New("epoll_wait: " + err.Error()))
		}
		for i := 0; i < nfds; i++ {
			fd := int(ep.events[i].Fd)
			if fd == ep.nfd {
				ep.consumeNotify()
				continue
			}
			ready = append(ready, Handle(fd))
		}
		return ready, nil
	}
}

func (ep *evPoll) Wakeup() {
	if !ep.notified.CompareAndSwap(0, 1) {
		return
	}
	for {
		n, err := unix.Write(ep.nfd, notifyWriteV) // man 2 eventfd
		if n == 8 {
			return
		}
		if err == unix.EINTR {
			continue
		}
		if err != unix.EAGAIN { // EAGAIN: counter is already non-zero
			ep.notified.Store(0)
		}
		return
	}
}

func (ep *evPoll) consumeNotify() {
	ep.notified.Store(0)
	var tmp [8]byte
	for {
		_, err := unix.Read(ep.nfd, tmp[:])
		if err == unix.EINTR {
			continue
		}
		break
	}
}

func (ep *evPoll) Close() error {
	if !ep.closed.CompareAndSwap(false, true) {
		return nil
	}
	err1 := unix.Close(ep.nfd)
	err2 := unix.Close(ep.efd)
	if err1 != nil {
		return errtrace.Wrap(errors.New("eventfd close: " + err1.Error()))
	}
	if err2 != nil {
		return errtrace.Wrap(errors.New("epoll close: " + err2.Error()))
	}
	return nil
}
