package catalog

import "sync/atomic"

// Store publishes an immutable catalog snapshot to concurrent readers.
// Reload is a single pointer swap: in-flight classifications keep the
// snapshot they started with, and readers never block writers.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore returns a store holding the given activated catalog.
func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

// Snapshot returns the currently published catalog.
func (s *Store) Snapshot() *Catalog {
	return s.current.Load()
}

// Swap atomically publishes a new catalog version.
func (s *Store) Swap(c *Catalog) {
	if c == nil {
		return
	}
	s.current.Store(c)
}
