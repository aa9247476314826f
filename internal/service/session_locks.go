package service

import "sync"

// sessionLocks serialises chats per session. An entry lives only while a
// request holds or waits for it, so abandoned sessions leave nothing behind.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{entries: make(map[string]*sessionLock)}
}

// acquire blocks until sessionID is free and returns its release func.
func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	entry, ok := l.entries[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.entries[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, sessionID)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
