package evtimer

// TimerID identifies a registered timer. It is never zero and a Manager
// never issues the same id twice.
type TimerID uint64

// timer is one scheduled unit of work.
type timer struct {
	id       TimerID
	src      TimerSource
	cb       func()
	periodic bool
	interval int64 // msec, informational; the source re-arms itself
}

// handleMap is an array + map union: handles with a small range use array
// indexing (timerfd numbers are dense and small), the rest go to a map.
// Not thread safe, the Manager lock guards it.
type handleMap struct {
	arrSize int
	arr     []*timer
	m       map[Handle]*timer
}

func newHandleMap(arrSize int) handleMap {
	if arrSize < 1 {
		panic("newHandleMap arrSize < 1")
	}
	return handleMap{
		arrSize: arrSize,
		arr:     make([]*timer, arrSize),
		m:       make(map[Handle]*timer),
	}
}

func (hm *handleMap) load(h Handle) *timer {
	if h >= 0 && int(h) < hm.arrSize {
		return hm.arr[h]
	}
	return hm.m[h]
}

func (hm *handleMap) store(h Handle, t *timer) {
	if h >= 0 && int(h) < hm.arrSize {
		hm.arr[h] = t
		return
	}
	hm.m[h] = t
}

func (hm *handleMap) delete(h Handle) {
	if h >= 0 && int(h) < hm.arrSize {
		hm.arr[h] = nil
		return
	}
	delete(hm.m, h)
}

// registry maps ids and handles to timers. Every timer in it has its source
// registered with the Multiplexer; both are changed in the same critical
// section.
type registry struct {
	byID     map[TimerID]*timer
	byHandle handleMap
	lastID   TimerID
}

func newRegistry(arrSize int) *registry {
	return &registry{
		byID:     make(map[TimerID]*timer),
		byHandle: newHandleMap(arrSize),
	}
}

func (r *registry) nextID() TimerID {
	r.lastID++
	return r.lastID
}

func (r *registry) insert(t *timer) {
	r.byID[t.id] = t
	r.byHandle.store(t.src.Handle(), t)
}

func (r *registry) get(id TimerID) *timer {
	return r.byID[id]
}

func (r *registry) lookup(h Handle) *timer {
	return r.byHandle.load(h)
}

func (r *registry) remove(t *timer) {
	delete(r.byID, t.id)
	if cur := r.byHandle.load(t.src.Handle()); cur == t {
		r.byHandle.delete(t.src.Handle())
	}
}

func (r *registry) len() int {
	return len(r.byID)
}

// drain empties the registry and returns what it held.
func (r *registry) drain() []*timer {
	ts := make([]*timer, 0, len(r.byID))
	for _, t := range r.byID {
		ts = append(ts, t)
		r.byHandle.delete(t.src.Handle())
	}
	clear(r.byID)
	return ts
}
