package booking

import "sync"

// dateLocks serializes the read-check-write sequence per calendar date.
// Without it two concurrent requests for the same slot can both pass the
// availability check before either commits. The guard only covers a single
// process; the store itself stays plain read/modify/write.
type dateLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDateLocks() *dateLocks {
	return &dateLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for a date and returns its unlock func.
// Date keys are never evicted; a season of distinct dates stays small.
func (l *dateLocks) lock(date string) func() {
	l.mu.Lock()
	m, ok := l.locks[date]
	if !ok {
		m = &sync.Mutex{}
		l.locks[date] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
