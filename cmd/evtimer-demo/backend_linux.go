//go:build linux

package main

import "github.com/shaovie/evtimer"

func epollBackend(evReadyNum int) (evtimer.Backend, error) {
	return evtimer.EpollBackend(evReadyNum), nil
}
