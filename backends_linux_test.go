//go:build linux

package evtimer

func testBackends() map[string]Backend {
	return map[string]Backend{
		"epoll": EpollBackend(0),
		"heap":  HeapBackend(),
	}
}
