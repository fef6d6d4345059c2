package store

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
	"pgregory.net/rapid"
)

func TestDeviceStore_PutReplaceSemantics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewDeviceStore()
		last := map[string]uint32{}

		n := rapid.IntRange(1, 40).Draw(t, "n")
		for i := 0; i < n; i++ {
			name := rapid.SampledFrom([]string{"eth0", "eth1", "wlan0", "br0"}).Draw(t, "name")
			mtu := rapid.Uint32Range(576, 9000).Draw(t, "mtu")
			d := model.NewDevice(name, model.DeviceTypeEthernet)
			d.MTU = mtu
			if i%2 == 0 {
				d.Addresses = []string{"10.0.0.1/24"}
			}

			ch := s.Put(d)
			_, seen := last[name]
			if seen && ch.Op != OpReplaced {
				t.Fatalf("Put(%s) op = %s, want replaced", name, ch.Op)
			}
			if !seen && ch.Op != OpAdded {
				t.Fatalf("Put(%s) op = %s, want added", name, ch.Op)
			}
			last[name] = mtu
		}

		if s.Len() != len(last) {
			t.Fatalf("Len() = %d, want %d", s.Len(), len(last))
		}
		for name, mtu := range last {
			got, err := s.Get(name)
			if err != nil {
				t.Fatalf("Get(%s) error: %v", name, err)
			}
			if got.MTU != mtu {
				t.Fatalf("Get(%s).MTU = %d, want last inserted %d", name, got.MTU, mtu)
			}
		}
	})
}

func TestDeviceStore_ReplaceDoesNotMerge(t *testing.T) {
	s := NewDeviceStore()

	first := model.NewDevice("eth0", model.DeviceTypeEthernet)
	first.Addresses = []string{"10.0.0.2/24"}
	first.Driver = "e1000e"
	s.Put(first)

	s.Put(model.NewDevice("eth0", model.DeviceTypeEthernet))

	got, _ := s.Get("eth0")
	if len(got.Addresses) != 0 || got.Driver != "" {
		t.Errorf("Get() after replace = %+v, want fields of the last value only", got)
	}
}

func TestDeviceStore_GetReturnsCopy(t *testing.T) {
	s := NewDeviceStore()
	d := model.NewDevice("br0", model.DeviceTypeBridge)
	d.Children = []string{"eth1"}
	s.Put(d)

	got, _ := s.Get("br0")
	got.Children[0] = "mutated"
	d.Children[0] = "mutated too"

	again, _ := s.Get("br0")
	if again.Children[0] != "eth1" {
		t.Errorf("store state was mutated through a returned or inserted pointer: %v", again.Children)
	}
}

func TestDeviceStore_NotFound(t *testing.T) {
	s := NewDeviceStore()

	if _, err := s.Get("nope"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Get() error = %v, want NOT_FOUND", err)
	}
	if _, err := s.Remove("nope"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Remove() error = %v, want NOT_FOUND", err)
	}
	if _, err := s.SetState("nope", state.DeviceActivated, false); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("SetState() error = %v, want NOT_FOUND", err)
	}
}

func TestDeviceStore_SetState(t *testing.T) {
	tests := []struct {
		name     string
		from     state.DeviceState
		to       state.DeviceState
		validate bool
		wantCode errors.ErrorCode
	}{
		{"legal requested change", state.DeviceDisconnected, state.DevicePreparing, true, ""},
		{"illegal requested change", state.DeviceFailed, state.DeviceActivated, true, errors.ErrCodeInvalidState},
		{"observed change bypasses table", state.DeviceFailed, state.DeviceActivated, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDeviceStore()
			d := model.NewDevice("eth0", model.DeviceTypeEthernet)
			d.State = tt.from
			s.Put(d)

			ch, err := s.SetState("eth0", tt.to, tt.validate)
			if tt.wantCode != "" {
				if !errors.IsCode(err, tt.wantCode) {
					t.Fatalf("SetState() error = %v, want %s", err, tt.wantCode)
				}
				got, _ := s.Get("eth0")
				if got.State != tt.from {
					t.Errorf("state changed to %s despite error", got.State)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetState() error: %v", err)
			}
			if ch.Old.State != tt.from || ch.New.State != tt.to {
				t.Errorf("change = %s -> %s, want %s -> %s", ch.Old.State, ch.New.State, tt.from, tt.to)
			}
		})
	}
}

func TestDeviceStore_UpdateWhere(t *testing.T) {
	s := NewDeviceStore()
	s.Put(model.NewDevice("br0", model.DeviceTypeBridge))
	for _, name := range []string{"eth1", "eth2", "eth3"} {
		d := model.NewDevice(name, model.DeviceTypeEthernet)
		if name != "eth3" {
			d.Parent = "br0"
		}
		s.Put(d)
	}

	changes := s.UpdateWhere(
		func(d *model.Device) bool { return d.Parent == "br0" },
		func(d *model.Device) { d.Parent = "" },
	)

	if len(changes) != 2 {
		t.Fatalf("UpdateWhere() changed %d devices, want 2", len(changes))
	}
	if _, found := s.Find(func(d *model.Device) bool { return d.Parent != "" }); found {
		t.Errorf("a device still references the parent")
	}
}

func TestDeviceStore_PutLinked(t *testing.T) {
	s := NewDeviceStore()
	s.Put(model.NewDevice("br0", model.DeviceTypeBridge))
	s.Put(model.NewDevice("br1", model.DeviceTypeBridge))

	child := model.NewDevice("veth0", model.DeviceTypeVeth)
	child.Parent = "br0"
	changes, err := s.PutLinked(child)
	if err != nil {
		t.Fatalf("PutLinked() error = %v", err)
	}
	if len(changes) != 2 || changes[0].Op != OpAdded || changes[1].New.Name != "br0" {
		t.Fatalf("unexpected changes: %+v", changes)
	}
	br0, _ := s.Get("br0")
	if !slices.Equal(br0.Children, []string{"veth0"}) {
		t.Errorf("br0 children = %v, want [veth0]", br0.Children)
	}

	t.Run("re-adding keeps a single entry", func(t *testing.T) {
		changes, err := s.PutLinked(child)
		if err != nil {
			t.Fatalf("PutLinked() error = %v", err)
		}
		if len(changes) != 1 || changes[0].Op != OpReplaced {
			t.Errorf("unexpected changes: %+v", changes)
		}
		br0, _ := s.Get("br0")
		if len(br0.Children) != 1 {
			t.Errorf("br0 children = %v", br0.Children)
		}
	})

	t.Run("moving to another parent", func(t *testing.T) {
		moved := child.Clone()
		moved.Parent = "br1"
		if _, err := s.PutLinked(moved); err != nil {
			t.Fatalf("PutLinked() error = %v", err)
		}
		br0, _ := s.Get("br0")
		br1, _ := s.Get("br1")
		if len(br0.Children) != 0 {
			t.Errorf("br0 still lists %v", br0.Children)
		}
		if !slices.Equal(br1.Children, []string{"veth0"}) {
			t.Errorf("br1 children = %v, want [veth0]", br1.Children)
		}
	})

	t.Run("missing parent", func(t *testing.T) {
		orphan := model.NewDevice("eth0.10", model.DeviceTypeVlan)
		orphan.Parent = "eth0"
		_, err := s.PutLinked(orphan)
		if !errors.IsCode(err, errors.ErrCodeInvalidParameter) {
			t.Fatalf("PutLinked() error = %v, want INVALID_PARAMETER", err)
		}
		if s.Exists("eth0.10") {
			t.Error("device with a missing parent must not be stored")
		}
	})

	t.Run("self parent", func(t *testing.T) {
		self := model.NewDevice("lo", model.DeviceTypeLoopback)
		self.Parent = "lo"
		changes, err := s.PutLinked(self)
		if err != nil {
			t.Fatalf("PutLinked() error = %v", err)
		}
		if len(changes) != 1 {
			t.Errorf("unexpected changes: %+v", changes)
		}
	})
}

func TestDeviceStore_ListOrder(t *testing.T) {
	s := NewDeviceStore()
	names := []string{"lo", "eth0", "wlan0", "br0"}
	for _, n := range names {
		s.Put(model.NewDevice(n, model.DeviceTypeUnknown))
	}
	s.Put(model.NewDevice("eth0", model.DeviceTypeEthernet))
	if _, err := s.Remove("wlan0"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	got := s.List()
	want := []string{"lo", "eth0", "br0"}
	if len(got) != len(want) {
		t.Fatalf("List() returned %d devices, want %d", len(got), len(want))
	}
	for i, d := range got {
		if d.Name != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, d.Name, want[i])
		}
	}
}

func TestDeviceStore_ConcurrentAccess(t *testing.T) {
	s := NewDeviceStore()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				name := fmt.Sprintf("veth%d", i%10)
				d := model.NewDevice(name, model.DeviceTypeVeth)
				d.MTU = uint32(1000 + w)
				s.Put(d)
				for _, listed := range s.List() {
					if listed.Name == "" {
						t.Errorf("List() returned a partially written device")
						return
					}
				}
				_, _ = s.SetState(name, state.DeviceActivated, false)
			}
		}(w)
	}
	wg.Wait()

	if s.Len() != 10 {
		t.Errorf("Len() = %d, want 10", s.Len())
	}
}
