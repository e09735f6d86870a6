// Package evtimer is a thread-safe timer manager. Callers register one-shot
// or periodic timers with millisecond delays, and a single control loop
// invokes their callbacks when due, multiplexing every timer over one
// blocking wait instead of one goroutine per timer.
//
// On linux each timer is a timerfd monitored by epoll; elsewhere, or with
// WithBackend(HeapBackend()), deadlines live in a 4-ary min-heap.
//
//	tm, err := evtimer.New()
//	if err != nil {
//		return err
//	}
//	go tm.Run()
//	id, _ := tm.AddInterval(0, 1000, func() { fmt.Println("tick") })
//	...
//	tm.Cancel(id)
//	tm.Stop()
package evtimer
