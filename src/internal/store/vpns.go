package store

import (
	"sync"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
)

// VpnStore holds VPN tunnels keyed by name.
type VpnStore struct {
	mu sync.RWMutex
	t  *table[string, *model.VpnTunnel]
}

func NewVpnStore() *VpnStore {
	return &VpnStore{t: newTable[string, *model.VpnTunnel]()}
}

// Add registers a new tunnel. Names must be unique.
func (s *VpnStore) Add(v *model.VpnTunnel) (Change[*model.VpnTunnel], error) {
	stored := v.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.t.get(stored.Name); exists {
		return Change[*model.VpnTunnel]{}, errors.NewAlreadyExistsError("vpn", stored.Name)
	}
	s.t.put(stored.Name, stored)
	return Change[*model.VpnTunnel]{Op: OpAdded, New: stored.Clone()}, nil
}

func (s *VpnStore) Get(name string) (*model.VpnTunnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.t.get(name)
	if !ok {
		return nil, errors.NewNotFoundError("vpn", name)
	}
	return v.Clone(), nil
}

func (s *VpnStore) Remove(name string) (*model.VpnTunnel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.t.remove(name)
	if !ok {
		return nil, errors.NewNotFoundError("vpn", name)
	}
	return v, nil
}

func (s *VpnStore) List() []*model.VpnTunnel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.VpnTunnel, 0, s.t.len())
	s.t.each(func(_ string, v *model.VpnTunnel) bool {
		out = append(out, v.Clone())
		return true
	})
	return out
}

func (s *VpnStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.len()
}

// SetState moves the tunnel to st if the transition is legal.
func (s *VpnStore) SetState(name string, st state.VpnState) (Change[*model.VpnTunnel], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.t.get(name)
	if !ok {
		return Change[*model.VpnTunnel]{}, errors.NewNotFoundError("vpn", name)
	}
	if !state.CanTransitionVpn(cur.State, st) {
		return Change[*model.VpnTunnel]{}, errors.NewInvalidStateError(
			"vpn '" + name + "' cannot move from " + cur.State.String() + " to " + st.String())
	}
	next := cur.Clone()
	next.State = st
	s.t.put(name, next)
	return Change[*model.VpnTunnel]{Op: OpUpdated, Old: cur.Clone(), New: next.Clone()}, nil
}
