package tracking

import "sync"

// locationLocks serializes processing per location. All mutation is scoped
// to a single location, so no cross-location ordering is needed; the lock
// only prevents two concurrently delivered events for the same location from
// both passing the debounce read before either has written.
type locationLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLocationLocks() *locationLocks {
	return &locationLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for a location and returns its release func.
func (l *locationLocks) lock(locationID string) func() {
	l.mu.Lock()
	m, ok := l.locks[locationID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[locationID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
