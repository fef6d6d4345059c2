package store

import (
	"slices"
	"sync"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
)

// DeviceStore holds devices keyed by interface name.
type DeviceStore struct {
	mu sync.RWMutex
	t  *table[string, *model.Device]
}

func NewDeviceStore() *DeviceStore {
	return &DeviceStore{t: newTable[string, *model.Device]()}
}

// Put inserts d or replaces the device with the same name.
func (s *DeviceStore) Put(d *model.Device) Change[*model.Device] {
	stored := d.Clone()

	s.mu.Lock()
	old, replaced := s.t.put(stored.Name, stored)
	s.mu.Unlock()

	if replaced {
		return Change[*model.Device]{Op: OpReplaced, Old: old.Clone(), New: stored.Clone()}
	}
	return Change[*model.Device]{Op: OpAdded, New: stored.Clone()}
}

// PutLinked inserts or replaces d and keeps the Children of its parents in
// step: d is listed by its new parent and dropped by a previous one. A parent
// other than d itself must be registered. The change of d comes first.
func (s *DeviceStore) PutLinked(d *model.Device) ([]Change[*model.Device], error) {
	stored := d.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	parent := stored.Parent
	if parent == stored.Name {
		parent = ""
	}
	if parent != "" {
		if _, ok := s.t.get(parent); !ok {
			return nil, errors.NewInvalidParameterError("parent device '"+parent+"' does not exist", nil)
		}
	}

	old, replaced := s.t.put(stored.Name, stored)
	changes := make([]Change[*model.Device], 0, 3)
	if replaced {
		changes = append(changes, Change[*model.Device]{Op: OpReplaced, Old: old.Clone(), New: stored.Clone()})
	} else {
		changes = append(changes, Change[*model.Device]{Op: OpAdded, New: stored.Clone()})
	}

	if replaced && old.Parent != "" && old.Parent != parent {
		if ch, ok := s.editLocked(old.Parent, func(p *model.Device) bool {
			n := len(p.Children)
			p.Children = slices.DeleteFunc(p.Children, func(c string) bool { return c == stored.Name })
			return len(p.Children) != n
		}); ok {
			changes = append(changes, ch)
		}
	}
	if parent != "" {
		if ch, ok := s.editLocked(parent, func(p *model.Device) bool {
			if slices.Contains(p.Children, stored.Name) {
				return false
			}
			p.Children = append(p.Children, stored.Name)
			return true
		}); ok {
			changes = append(changes, ch)
		}
	}
	return changes, nil
}

// editLocked applies fn to a copy of the named device and stores it when fn
// reports a modification.
func (s *DeviceStore) editLocked(name string, fn func(*model.Device) bool) (Change[*model.Device], bool) {
	cur, ok := s.t.get(name)
	if !ok {
		return Change[*model.Device]{}, false
	}
	next := cur.Clone()
	if !fn(next) {
		return Change[*model.Device]{}, false
	}
	s.t.put(name, next)
	return Change[*model.Device]{Op: OpUpdated, Old: cur.Clone(), New: next.Clone()}, true
}

func (s *DeviceStore) Get(name string) (*model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.t.get(name)
	if !ok {
		return nil, errors.NewNotFoundError("device", name)
	}
	return d.Clone(), nil
}

// Exists reports whether a device with the given name is registered.
func (s *DeviceStore) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.t.get(name)
	return ok
}

func (s *DeviceStore) Remove(name string) (*model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.t.remove(name)
	if !ok {
		return nil, errors.NewNotFoundError("device", name)
	}
	return d, nil
}

// List returns a snapshot in registration order.
func (s *DeviceStore) List() []*model.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Device, 0, s.t.len())
	s.t.each(func(_ string, d *model.Device) bool {
		out = append(out, d.Clone())
		return true
	})
	return out
}

// Find returns the first device, in registration order, matching pred.
func (s *DeviceStore) Find(pred func(*model.Device) bool) (*model.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *model.Device
	s.t.each(func(_ string, d *model.Device) bool {
		if pred(d) {
			found = d.Clone()
			return false
		}
		return true
	})
	return found, found != nil
}

func (s *DeviceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.len()
}

// Update applies fn to a copy of the named device and stores the result if fn
// succeeds. The name cannot be changed.
func (s *DeviceStore) Update(name string, fn func(*model.Device) error) (Change[*model.Device], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.t.get(name)
	if !ok {
		return Change[*model.Device]{}, errors.NewNotFoundError("device", name)
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return Change[*model.Device]{}, err
	}
	next.Name = name
	s.t.put(name, next)
	return Change[*model.Device]{Op: OpUpdated, Old: cur.Clone(), New: next.Clone()}, nil
}

// UpdateWhere applies fn to every device matching pred and returns one change per device.
func (s *DeviceStore) UpdateWhere(pred func(*model.Device) bool, fn func(*model.Device)) []Change[*model.Device] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []Change[*model.Device]
	var updated []*model.Device
	s.t.each(func(_ string, d *model.Device) bool {
		if pred(d) {
			next := d.Clone()
			fn(next)
			next.Name = d.Name
			updated = append(updated, next)
			changes = append(changes, Change[*model.Device]{Op: OpUpdated, Old: d.Clone(), New: next.Clone()})
		}
		return true
	})
	for _, d := range updated {
		s.t.put(d.Name, d)
	}
	return changes
}

// SetState records a new state. With validate set, the change must be legal
// according to the device transition table.
func (s *DeviceStore) SetState(name string, st state.DeviceState, validate bool) (Change[*model.Device], error) {
	return s.Update(name, func(d *model.Device) error {
		if validate && !state.CanTransitionDevice(d.State, st) {
			return errors.NewInvalidStateError("device '" + name + "' cannot move from " + d.State.String() + " to " + st.String())
		}
		d.State = st
		return nil
	})
}
