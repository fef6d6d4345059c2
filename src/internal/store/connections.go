package store

import (
	"sync"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
)

// ConnectionStore holds connection profiles keyed by their generated ID.
// Display names are a secondary, non-unique lookup.
type ConnectionStore struct {
	mu sync.RWMutex
	t  *table[string, *model.Connection]
}

func NewConnectionStore() *ConnectionStore {
	return &ConnectionStore{t: newTable[string, *model.Connection]()}
}

// Add inserts a new connection. IDs must be unique.
func (s *ConnectionStore) Add(c *model.Connection) (Change[*model.Connection], error) {
	stored := c.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.t.get(stored.ID); exists {
		return Change[*model.Connection]{}, errors.NewAlreadyExistsError("connection", stored.ID)
	}
	s.t.put(stored.ID, stored)
	return Change[*model.Connection]{Op: OpAdded, New: stored.Clone()}, nil
}

func (s *ConnectionStore) Get(id string) (*model.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.t.get(id)
	if !ok {
		return nil, errors.NewNotFoundError("connection", id)
	}
	return c.Clone(), nil
}

// FindByName returns the first connection, in creation order, with the given display name.
func (s *ConnectionStore) FindByName(name string) (*model.Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findByNameLocked(name)
}

func (s *ConnectionStore) findByNameLocked(name string) (*model.Connection, bool) {
	var found *model.Connection
	s.t.each(func(_ string, c *model.Connection) bool {
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return found.Clone(), true
}

// Resolve looks up by exact ID first, then by display name.
func (s *ConnectionStore) Resolve(idOrName string) (*model.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.t.get(idOrName); ok {
		return c.Clone(), nil
	}
	if c, ok := s.findByNameLocked(idOrName); ok {
		return c, nil
	}
	return nil, errors.NewNotFoundError("connection", idOrName)
}

func (s *ConnectionStore) Remove(id string) (*model.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.t.remove(id)
	if !ok {
		return nil, errors.NewNotFoundError("connection", id)
	}
	return c, nil
}

// List returns a snapshot in creation order.
func (s *ConnectionStore) List() []*model.Connection {
	return s.Filter(func(*model.Connection) bool { return true })
}

// Filter returns a snapshot of the connections matching pred, in creation order.
func (s *ConnectionStore) Filter(pred func(*model.Connection) bool) []*model.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Connection, 0, s.t.len())
	s.t.each(func(_ string, c *model.Connection) bool {
		if pred(c) {
			out = append(out, c.Clone())
		}
		return true
	})
	return out
}

func (s *ConnectionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.len()
}

// Update applies fn to a copy of the connection and stores it if fn succeeds.
// The ID cannot be changed.
func (s *ConnectionStore) Update(id string, fn func(*model.Connection) error) (Change[*model.Connection], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.t.get(id)
	if !ok {
		return Change[*model.Connection]{}, errors.NewNotFoundError("connection", id)
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return Change[*model.Connection]{}, err
	}
	next.ID = id
	s.t.put(id, next)
	return Change[*model.Connection]{Op: OpUpdated, Old: cur.Clone(), New: next.Clone()}, nil
}

// UpdateWhere applies fn to every connection matching pred.
func (s *ConnectionStore) UpdateWhere(pred func(*model.Connection) bool, fn func(*model.Connection)) []Change[*model.Connection] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []Change[*model.Connection]
	var updated []*model.Connection
	s.t.each(func(_ string, c *model.Connection) bool {
		if pred(c) {
			next := c.Clone()
			fn(next)
			next.ID = c.ID
			updated = append(updated, next)
			changes = append(changes, Change[*model.Connection]{Op: OpUpdated, Old: c.Clone(), New: next.Clone()})
		}
		return true
	})
	for _, c := range updated {
		s.t.put(c.ID, c)
	}
	return changes
}
