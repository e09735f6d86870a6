//go:build !linux

package evtimer

// timerfd and epoll are linux only.
func defaultBackend(int) Backend {
	return HeapBackend()
}
