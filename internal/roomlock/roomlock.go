// Package roomlock serializes mutating operations per room. Conflict checks
// are check-then-act: two concurrent requests could both pass validation
// against a snapshot the other is about to change, so every mutation holds
// the room's lock from conflict check through persist and merge.
package roomlock

import "sync"

type Registry struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[uint]*sync.Mutex)}
}

// Lock acquires the mutex for roomID and returns the unlock func.
func (r *Registry) Lock(roomID uint) func() {
	r.mu.Lock()
	l, ok := r.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[roomID] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}
