package server

import (
	"sync"

	"github.com/deepsafelabs/deepsafe-api/internal/quiz"
)

// runEntry pairs a run with the lock that serializes access to it. Run
// itself is not safe for concurrent use, so every handler touching a
// player's run must hold the entry lock.
type runEntry struct {
	mu  sync.Mutex
	run *quiz.Run
}

// runRegistry holds each player's in-flight quiz run. A player has at
// most one active run; starting a new one replaces the old.
type runRegistry struct {
	mu      sync.Mutex
	entries map[string]*runEntry
}

func newRunRegistry() *runRegistry {
	return &runRegistry{entries: make(map[string]*runEntry)}
}

// Acquire returns the player's run with its entry lock held, so
// simultaneous requests against the same run execute one at a time.
// The caller must call release when finished with the run.
func (r *runRegistry) Acquire(userID string) (run *quiz.Run, release func(), ok bool) {
	r.mu.Lock()
	e, ok := r.entries[userID]
	r.mu.Unlock()
	if !ok {
		return nil, nil, false
	}
	e.mu.Lock()
	return e.run, e.mu.Unlock, true
}

func (r *runRegistry) Put(userID string, run *quiz.Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = &runEntry{run: run}
}

func (r *runRegistry) Delete(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}
