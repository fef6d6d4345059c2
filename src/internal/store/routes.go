package store

import (
	"sync"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
)

// RouteStore holds routes keyed by destination, together with the current
// default gateway of each address family. Both are guarded by the same lock so
// gateway bookkeeping and the "default" route change together.
type RouteStore struct {
	mu       sync.RWMutex
	t        *table[string, *model.Route]
	gateways model.DefaultGateways
}

func NewRouteStore() *RouteStore {
	return &RouteStore{t: newTable[string, *model.Route]()}
}

// Put inserts r or replaces the route with the same destination.
func (s *RouteStore) Put(r *model.Route) Change[*model.Route] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(r)
}

func (s *RouteStore) putLocked(r *model.Route) Change[*model.Route] {
	stored := r.Clone()
	old, replaced := s.t.put(stored.Destination, stored)
	if replaced {
		return Change[*model.Route]{Op: OpReplaced, Old: old.Clone(), New: stored.Clone()}
	}
	return Change[*model.Route]{Op: OpAdded, New: stored.Clone()}
}

func (s *RouteStore) Get(destination string) (*model.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.t.get(destination)
	if !ok {
		return nil, errors.NewNotFoundError("route", destination)
	}
	return r.Clone(), nil
}

func (s *RouteStore) Remove(destination string) (*model.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.t.remove(destination)
	if !ok {
		return nil, errors.NewNotFoundError("route", destination)
	}
	return r, nil
}

// RemoveWhere removes every route matching pred and returns them.
func (s *RouteStore) RemoveWhere(pred func(*model.Route) bool) []*model.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []string
	s.t.each(func(dest string, r *model.Route) bool {
		if pred(r) {
			matched = append(matched, dest)
		}
		return true
	})
	removed := make([]*model.Route, 0, len(matched))
	for _, dest := range matched {
		if r, ok := s.t.remove(dest); ok {
			removed = append(removed, r)
		}
	}
	return removed
}

// List returns a snapshot in insertion order.
func (s *RouteStore) List() []*model.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Route, 0, s.t.len())
	s.t.each(func(_ string, r *model.Route) bool {
		out = append(out, r.Clone())
		return true
	})
	return out
}

func (s *RouteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.len()
}

// SetDefaultGateway records r.Gateway as the default gateway of its address
// family and stores r under the "default" key.
func (s *RouteStore) SetDefaultGateway(r *model.Route) Change[*model.Route] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if model.IsIPv6Address(r.Gateway) {
		s.gateways.IPv6 = r.Gateway
	} else {
		s.gateways.IPv4 = r.Gateway
	}
	route := r.Clone()
	route.Destination = model.DefaultDestination
	return s.putLocked(route)
}

// Gateways returns the current default gateways.
func (s *RouteStore) Gateways() model.DefaultGateways {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gateways
}

// ClearDefaultGateway forgets the gateway of one family. The "default" route is
// removed only when it belongs to that family; it is returned when removed.
func (s *RouteStore) ClearDefaultGateway(ipv6 bool) (previous string, removed *model.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ipv6 {
		previous, s.gateways.IPv6 = s.gateways.IPv6, ""
	} else {
		previous, s.gateways.IPv4 = s.gateways.IPv4, ""
	}
	if r, ok := s.t.get(model.DefaultDestination); ok && r.IsIPv6() == ipv6 {
		s.t.remove(model.DefaultDestination)
		removed = r
	}
	return previous, removed
}

// Clear removes all routes and both gateways.
func (s *RouteStore) Clear() []*model.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gateways = model.DefaultGateways{}
	return s.t.clear()
}
