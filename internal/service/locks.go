package service

import "sync"

// keyedMutex serializes work per grievance id while letting distinct ids
// proceed in parallel. Entries are reference counted and removed when the
// last holder releases, so the map never grows with the id space.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

func (k *keyedMutex) Lock(id string) {
	k.mu.Lock()
	entry, ok := k.locks[id]
	if !ok {
		entry = &lockEntry{}
		k.locks[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

func (k *keyedMutex) Unlock(id string) {
	k.mu.Lock()
	entry, ok := k.locks[id]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, id)
		}
	}
	k.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
