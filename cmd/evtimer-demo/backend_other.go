//go:build !linux

package main

import (
	"errors"

	"github.com/shaovie/evtimer"
)

func epollBackend(int) (evtimer.Backend, error) {
	return nil, errors.New("backend epoll is only available on linux")
}
