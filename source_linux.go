//go:build linux

package evtimer

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"braces.dev/errtrace"
	"golang.org/x/sys/unix"
)

// timerfdSource is a CLOCK_MONOTONIC timerfd.
type timerfdSource struct {
	noCopy

	tfd    int
	closed atomic.Bool
}

func newTimerfdSource(delay, interval int64) (*timerfdSource, error) {
	if err := checkDelay(delay, interval); err != nil {
		return nil, errtrace.Wrap(err)
	}
	tfd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		if err == unix.ENOSYS {
			panic("timerfd_create system call not implemented")
		}
		return nil, wrapErr(ErrResourceExhausted, "timerfd_create", err)
	}

	// A zero it_value disarms the timer, so "now" is 1ns.
	value := delay * 1000 * 1000
	if value == 0 {
		value = 1
	}
	timeSpec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(interval * 1000 * 1000),
		Value:    unix.NsecToTimespec(value),
	}
	if err = unix.TimerfdSettime(tfd, 0 /*Relative time*/, &timeSpec, nil); err != nil {
		unix.Close(tfd)
		if err == unix.EINVAL {
			return nil, wrapErr(ErrInvalidArgument, "timerfd_settime", err)
		}
		return nil, wrapErr(ErrResourceExhausted, "timerfd_settime", err)
	}
	return &timerfdSource{tfd: tfd}, nil
}

func (s *timerfdSource) Handle() Handle {
	return Handle(s.tfd)
}

func (s *timerfdSource) Drain() (uint64, error) {
	var readTimerfdV uint64 = 0
	var readTimerfdBuf = (*(*[8]byte)(unsafe.Pointer(&readTimerfdV)))[:]
	for {
		n, err := unix.Read(s.tfd, readTimerfdBuf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EAGAIN {
				return 0, nil
			}
			return 0, errtrace.Wrap(errors.New("timerfd read: " + err.Error()))
		}
		if n != 8 {
			return 0, errtrace.Wrap(errors.New("timerfd read: short read"))
		}
		return readTimerfdV, nil
	}
}

func (s *timerfdSource) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := unix.Close(s.tfd); err != nil {
		return errtrace.Wrap(errors.New("timerfd close: " + err.Error()))
	}
	return nil
}
