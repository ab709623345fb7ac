package coordinator

import "sync"

// userLocks serializes operations per user key. Per-user granularity keeps
// unrelated users fully concurrent while guaranteeing that two in-flight
// submissions for the same logical record observe each other's writes.
//
// Locks are never removed; the per-user footprint is one mutex.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for user and returns the unlock function.
func (l *userLocks) lock(user string) func() {
	l.mu.Lock()
	m, ok := l.locks[user]
	if !ok {
		m = &sync.Mutex{}
		l.locks[user] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
