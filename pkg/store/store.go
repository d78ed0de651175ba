// Package store keeps the in-memory copy of the flows known to a dashboard session.
package store

import (
	"slices"
	"sync"

	"github.com/dukex/docflow/pkg/models"
)

// Listener is notified after every change to the store.
type Listener func()

// Store mirrors the server's flows. A store that has never been loaded is distinct
// from a loaded, empty one. Writes are applied in call order and the last write wins.
type Store struct {
	mu        sync.RWMutex
	flows     []models.Flow
	loaded    bool
	listeners []Listener
}

// New creates an unloaded store.
func New() *Store {
	return &Store{}
}

// Subscribe registers a listener called after each mutation.
func (s *Store) Subscribe(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, listener)
}

// Loaded reports whether the store has received its first snapshot.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loaded
}

// All returns a copy of the flows and whether the store is loaded.
func (s *Store) All() ([]models.Flow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, false
	}

	flows := make([]models.Flow, len(s.flows))
	for i, flow := range s.flows {
		flows[i] = flow.Clone()
	}

	return flows, true
}

// Get returns a copy of the flow with the given id.
func (s *Store) Get(id string) (flow models.Flow, loaded bool, found bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return models.Flow{}, false, false
	}

	i := s.index(id)
	if i < 0 {
		return models.Flow{}, true, false
	}

	return s.flows[i].Clone(), true, true
}

// SetAll replaces the whole collection.
func (s *Store) SetAll(flows []models.Flow) {
	s.mutate(func() {
		s.flows = make([]models.Flow, len(flows))
		for i, flow := range flows {
			s.flows[i] = flow.Clone()
		}

		s.loaded = true
	})
}

// Append adds a flow. Ids are not de-duplicated.
func (s *Store) Append(flow models.Flow) {
	s.mutate(func() {
		s.flows = append(s.flows, flow.Clone())
		s.loaded = true
	})
}

// Replace swaps the flow matching id for flow. Unknown ids are ignored.
func (s *Store) Replace(id string, flow models.Flow) {
	s.mutate(func() {
		if i := s.index(id); i >= 0 {
			s.flows[i] = flow.Clone()
		}
	})
}

// PatchState updates only the state of the flow matching id. Unknown ids are ignored.
func (s *Store) PatchState(id string, state models.FlowState) {
	s.mutate(func() {
		if i := s.index(id); i >= 0 {
			s.flows[i].State = state
		}
	})
}

// Remove drops the flow matching id.
func (s *Store) Remove(id string) {
	s.mutate(func() {
		if !s.loaded {
			return
		}

		s.flows = slices.DeleteFunc(s.flows, func(f models.Flow) bool { return f.ID == id })
	})
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.flows, func(f models.Flow) bool { return f.ID == id })
}

func (s *Store) mutate(change func()) {
	s.mu.Lock()
	change()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener()
	}
}
