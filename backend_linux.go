//go:build linux

package evtimer

import "braces.dev/errtrace"

type epollBackend struct {
	evReadyNum int
}

// EpollBackend returns the timerfd + epoll backend. evReadyNum is the
// number of events fetched by one epoll_wait, values < 1 use the default.
func EpollBackend(evReadyNum int) Backend {
	if evReadyNum < 1 {
		evReadyNum = defaultEvReadyNum
	}
	return epollBackend{evReadyNum: evReadyNum}
}

func (epollBackend) Name() string { return "epoll" }

func (b epollBackend) NewMultiplexer() (Multiplexer, error) {
	ep, err := newEvPoll(b.evReadyNum)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return ep, nil
}

func defaultBackend(evReadyNum int) Backend {
	return EpollBackend(evReadyNum)
}
