package room

import (
	"sync"

	"github.com/mcoot/wordbattle/internal/model"
)

// keyedMutex serialises work per room code. Entries are reference counted
// and dropped once no goroutine holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[model.RoomCode]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[model.RoomCode]*refLock)}
}

// Lock blocks until the code is held and returns the matching unlock
func (k *keyedMutex) Lock(code model.RoomCode) func() {
	k.mu.Lock()
	l, ok := k.locks[code]
	if !ok {
		l = &refLock{}
		k.locks[code] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, code)
		}
		k.mu.Unlock()
	}
}

// size returns the number of live entries
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
