package farmlock

import (
	"sync"

	"github.com/google/uuid"
)

// Registry hands out one mutex per farm so ledger mutations for the same farm
// serialize while different farms proceed in parallel. Hold the lock only for
// the local read-modify-write, never across an asset-ledger round-trip.
type Registry struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for farmID and returns the unlock func.
func (r *Registry) Lock(farmID uuid.UUID) func() {
	r.mu.Lock()
	m, ok := r.locks[farmID]
	if !ok {
		m = &sync.Mutex{}
		r.locks[farmID] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
