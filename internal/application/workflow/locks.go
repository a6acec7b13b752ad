package workflow

import "sync"

// sessionLocks serializes operations per session id so the
// read-validate-mutate-write sequence of a transition never races another
// operation on the same session.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[int64]*sync.Mutex),
	}
}

// acquire locks the mutex for the session id, creating it on first use.
// Locks are never reclaimed; sessions are retained indefinitely.
func (l *sessionLocks) acquire(sessionID int64) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m
}
