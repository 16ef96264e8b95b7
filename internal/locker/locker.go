// Package locker provides an advisory per-user mutual exclusion scope.
// The challenge engine itself gives no concurrency guarantees; wrapping
// the load-evaluate-commit sequence in the user's lock keeps two
// simultaneous orders from double-counting stats or racing on badge
// issuance.
package locker

import "sync"

// UserLocker hands out one mutex per user id. Entries are never
// evicted: the map grows with the set of user ids seen over the process
// lifetime, a few dozen bytes each.
type UserLocker struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func New() *UserLocker {
	return &UserLocker{locks: make(map[int]*sync.Mutex)}
}

// Lock acquires the lock for one user id and returns the release func.
//
//	unlock := locks.Lock(userID)
//	defer unlock()
func (l *UserLocker) Lock(userID int) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
