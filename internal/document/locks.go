package document

import "sync"

// streamLocks serializes writers per document stream. The whole
// read-reconstruct-decide-append-project sequence for one document runs
// under its lock; without it two concurrent updates could both reconstruct
// from version N and race to claim N+1.
type streamLocks struct {
	mu    sync.Mutex
	locks map[string]*streamLock
}

type streamLock struct {
	mu   sync.Mutex
	refs int
}

func newStreamLocks() *streamLocks {
	return &streamLocks{locks: make(map[string]*streamLock)}
}

// Acquire locks the stream and returns its release function.
func (l *streamLocks) Acquire(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &streamLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
