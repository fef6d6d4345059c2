package control

import (
	"strings"
	"testing"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/settings"
	"github.com/maksimkurb/netctl/src/internal/state"
	"pgregory.net/rapid"
)

func TestAddConnection(t *testing.T) {
	tests := []struct {
		name    string
		bag     settings.Bag
		wantErr bool
	}{
		{"minimal", settings.Bag{"id": "office", "type": "ethernet"}, false},
		{"with interface", settings.Bag{"id": "home", "type": "wifi", "interface": "wlan0", "autoconnect": false}, false},
		{"missing id", settings.Bag{"type": "ethernet"}, true},
		{"missing type", settings.Bag{"id": "office"}, true},
		{"unknown type", settings.Bag{"id": "office", "type": "carrier-pigeon"}, true},
		{"unknown key", settings.Bag{"id": "office", "type": "ethernet", "color": "blue"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id, err := f.ctl.AddConnection(tt.bag)
			if tt.wantErr {
				assertCode(t, err, errors.ErrCodeInvalidParameter)
				if n := len(f.ctl.ListConnections()); n != 0 {
					t.Errorf("expected no connections, got %d", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddConnection failed: %v", err)
			}
			conn, err := f.ctl.GetConnection(id)
			if err != nil {
				t.Fatalf("GetConnection failed: %v", err)
			}
			if conn.State != state.ConnectionNew {
				t.Errorf("expected New, got %s", conn.State)
			}
			if conn.Name != tt.bag["id"] {
				t.Errorf("expected name %v, got %s", tt.bag["id"], conn.Name)
			}
			if iface, ok := tt.bag["interface"]; ok && conn.Device != iface {
				t.Errorf("expected device %v, got %s", iface, conn.Device)
			}
		})
	}
}

func TestConnectionResolvesByIDOrName(t *testing.T) {
	f := newFixture(t)
	id := f.addConnection(t, "office")

	byID, err := f.ctl.GetConnection(id)
	if err != nil {
		t.Fatalf("lookup by id failed: %v", err)
	}
	byName, err := f.ctl.GetConnection("office")
	if err != nil {
		t.Fatalf("lookup by name failed: %v", err)
	}
	if byID.ID != byName.ID {
		t.Errorf("id and name resolve to different connections: %s vs %s", byID.ID, byName.ID)
	}

	_, err = f.ctl.GetConnection("nowhere")
	assertCode(t, err, errors.ErrCodeNotFound)
}

func TestConnectionIDsAreUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		seen := map[string]bool{}
		for i := 0; i < n; i++ {
			name := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "name")
			id, err := f.ctl.AddConnection(settings.Bag{"id": name, "type": "ethernet"})
			if err != nil {
				rt.Fatalf("AddConnection failed: %v", err)
			}
			if seen[id] {
				rt.Fatalf("duplicate id %s", id)
			}
			seen[id] = true
		}
		if got := len(f.ctl.ListConnections()); got != n {
			rt.Fatalf("expected %d connections, got %d", n, got)
		}
	})
}

func TestModifyConnection(t *testing.T) {
	f := newFixture(t)
	id := f.addConnection(t, "office")

	if err := f.ctl.ModifyConnection("office", settings.Bag{"id": "branch", "autoconnect": false}); err != nil {
		t.Fatalf("ModifyConnection failed: %v", err)
	}
	conn, _ := f.ctl.GetConnection(id)
	if conn.Name != "branch" || conn.Autoconnect {
		t.Errorf("unexpected connection after modify: %+v", conn)
	}
	if conn.Type != model.ConnectionTypeEthernet {
		t.Errorf("type changed to %s", conn.Type)
	}

	assertCode(t, f.ctl.ModifyConnection(id, settings.Bag{"type": "wifi"}), errors.ErrCodeInvalidParameter)
	assertCode(t, f.ctl.ModifyConnection("ghost", settings.Bag{"autoconnect": true}), errors.ErrCodeNotFound)
}

func TestDeleteConnection(t *testing.T) {
	f := newFixture(t)
	id := f.addConnection(t, "office")

	if err := f.ctl.DeleteConnection("office"); err != nil {
		t.Fatalf("DeleteConnection failed: %v", err)
	}
	if _, err := f.ctl.GetConnection(id); err == nil {
		t.Error("connection should be gone")
	}
	assertCode(t, f.ctl.DeleteConnection(id), errors.ErrCodeNotFound)

	if n := f.pub.Count(events.ConnectionRemoved); n != 1 {
		t.Errorf("expected 1 ConnectionRemoved, got %d", n)
	}
}

func TestActivateConnection(t *testing.T) {
	t.Run("completes when the device activates", func(t *testing.T) {
		f := newFixture(t)
		f.addDevice(t, "eth0", model.DeviceTypeEthernet, state.DeviceDisconnected)
		id := f.addConnection(t, "office")

		if err := f.ctl.ActivateConnection(id, "eth0"); err != nil {
			t.Fatalf("ActivateConnection failed: %v", err)
		}
		if st := f.connectionState(t, id); st != state.ConnectionActivating {
			t.Fatalf("expected Activating, got %s", st)
		}
		if n := len(f.ctl.GetActiveConnections()); n != 1 {
			t.Errorf("expected 1 active connection, got %d", n)
		}
		if n := f.pub.Count(events.ConnectionActivated); n != 1 {
			t.Errorf("expected 1 ConnectionActivated, got %d", n)
		}

		if err := f.ctl.UpdateDeviceState("eth0", state.DevicePreparing); err != nil {
			t.Fatalf("UpdateDeviceState failed: %v", err)
		}
		if st := f.connectionState(t, id); st != state.ConnectionActivating {
			t.Errorf("expected Activating while the device prepares, got %s", st)
		}
		if err := f.ctl.UpdateDeviceState("eth0", state.DeviceIPConfig); err != nil {
			t.Fatalf("UpdateDeviceState failed: %v", err)
		}
		if err := f.ctl.UpdateDeviceState("eth0", state.DeviceActivated); err != nil {
			t.Fatalf("UpdateDeviceState failed: %v", err)
		}
		if st := f.connectionState(t, id); st != state.ConnectionActivated {
			t.Errorf("expected Activated, got %s", st)
		}
	})

	t.Run("completes at once on an active device", func(t *testing.T) {
		f := newFixture(t)
		f.addDevice(t, "eth0", model.DeviceTypeEthernet, state.DeviceActivated)
		id := f.addConnection(t, "office")

		if err := f.ctl.ActivateConnection(id, "eth0"); err != nil {
			t.Fatalf("ActivateConnection failed: %v", err)
		}
		if st := f.connectionState(t, id); st != state.ConnectionActivated {
			t.Errorf("expected Activated, got %s", st)
		}
		if n := f.pub.Count(events.ConnectionStateChanged); n != 2 {
			t.Errorf("expected 2 ConnectionStateChanged, got %d", n)
		}
	})

	t.Run("device failure deactivates", func(t *testing.T) {
		f := newFixture(t)
		f.addDevice(t, "eth0", model.DeviceTypeEthernet, state.DeviceActivated)
		id := f.addConnection(t, "office")
		if err := f.ctl.ActivateConnection(id, "eth0"); err != nil {
			t.Fatalf("ActivateConnection failed: %v", err)
		}
		if st := f.connectionState(t, id); st != state.ConnectionActivated {
			t.Fatalf("expected Activated before the failure, got %s", st)
		}

		if err := f.ctl.UpdateDeviceState("eth0", state.DeviceFailed); err != nil {
			t.Fatalf("UpdateDeviceState failed: %v", err)
		}
		if st := f.connectionState(t, id); st != state.ConnectionDeactivated {
			t.Errorf("expected Deactivated, got %s", st)
		}
		if n := f.pub.Count(events.ConnectionDeactivated); n != 1 {
			t.Errorf("expected 1 ConnectionDeactivated, got %d", n)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		f := newFixture(t)
		f.addDevice(t, "eth0", model.DeviceTypeEthernet, state.DeviceDisconnected)
		id := f.addConnection(t, "office")

		assertCode(t, f.ctl.ActivateConnection(id, ""), errors.ErrCodeInvalidParameter)
		assertCode(t, f.ctl.ActivateConnection(id, "eth9"), errors.ErrCodeNotFound)
		assertCode(t, f.ctl.ActivateConnection("ghost", "eth0"), errors.ErrCodeNotFound)

		if err := f.ctl.ActivateConnection(id, "eth0"); err != nil {
			t.Fatalf("ActivateConnection failed: %v", err)
		}
		if err := f.ctl.DeactivateConnection(id); err != nil {
			t.Fatalf("DeactivateConnection failed: %v", err)
		}
		if st := f.connectionState(t, id); st != state.ConnectionDeactivated {
			t.Fatalf("expected Deactivated, got %s", st)
		}
		assertCode(t, f.ctl.DeactivateConnection(id), errors.ErrCodeInvalidState)
	})
}

func TestDeactivateConnection(t *testing.T) {
	t.Run("completes on an active device", func(t *testing.T) {
		f := newFixture(t)
		f.addDevice(t, "eth0", model.DeviceTypeEthernet, state.DeviceActivated)
		id := f.addConnection(t, "office")
		if err := f.ctl.ActivateConnection(id, "eth0"); err != nil {
			t.Fatalf("ActivateConnection failed: %v", err)
		}
		f.pub.Reset()

		if err := f.ctl.DeactivateConnection(id); err != nil {
			t.Fatalf("DeactivateConnection failed: %v", err)
		}
		conn, _ := f.ctl.GetConnection(id)
		if conn.State != state.ConnectionDeactivated {
			t.Fatalf("expected Deactivated, got %s", conn.State)
		}
		if conn.Device != "" {
			t.Errorf("expected the device to be unbound, got %s", conn.Device)
		}
		if n := len(f.ctl.GetActiveConnections()); n != 0 {
			t.Errorf("expected no active connections, got %d", n)
		}
		if n := f.pub.Count(events.ConnectionDeactivated); n != 1 {
			t.Errorf("expected 1 ConnectionDeactivated, got %d", n)
		}

		// rediscovery reports the same device state
		f.addDevice(t, "eth0", model.DeviceTypeEthernet, state.DeviceActivated)
		if err := f.ctl.ActivateConnection(id, "eth0"); err != nil {
			t.Fatalf("re-activation failed: %v", err)
		}
		if st := f.connectionState(t, id); st != state.ConnectionActivated {
			t.Errorf("expected Activated after re-activation, got %s", st)
		}
	})

	t.Run("not active", func(t *testing.T) {
		f := newFixture(t)
		id := f.addConnection(t, "office")
		assertCode(t, f.ctl.DeactivateConnection(id), errors.ErrCodeInvalidState)
	})
}

func TestCloneConnection(t *testing.T) {
	f := newFixture(t)
	src, err := f.ctl.AddConnection(settings.Bag{"id": "home", "type": "wifi", "autoconnect": false, "interface": "wlan0"})
	if err != nil {
		t.Fatalf("AddConnection failed: %v", err)
	}

	id, err := f.ctl.CloneConnection("home", "home-copy")
	if err != nil {
		t.Fatalf("CloneConnection failed: %v", err)
	}
	if id == src {
		t.Fatal("clone must get a new id")
	}
	orig, _ := f.ctl.GetConnection(src)
	clone, _ := f.ctl.GetConnection(id)
	if clone.Name != "home-copy" {
		t.Errorf("expected name home-copy, got %s", clone.Name)
	}
	if clone.Type != orig.Type || clone.Autoconnect != orig.Autoconnect {
		t.Errorf("clone differs from source: %+v vs %+v", clone, orig)
	}
	if clone.State != state.ConnectionNew {
		t.Errorf("expected New, got %s", clone.State)
	}

	_, err = f.ctl.CloneConnection("home", " ")
	assertCode(t, err, errors.ErrCodeInvalidParameter)
	_, err = f.ctl.CloneConnection("ghost", "x")
	assertCode(t, err, errors.ErrCodeNotFound)
}

func TestExportImportConnection(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			f := newFixture(t)
			if _, err := f.ctl.AddConnection(settings.Bag{"id": "home", "type": "wifi", "autoconnect": false, "interface": "wlan0"}); err != nil {
				t.Fatalf("AddConnection failed: %v", err)
			}

			data, err := f.ctl.ExportConnection("home", format)
			if err != nil {
				t.Fatalf("ExportConnection failed: %v", err)
			}
			if !strings.Contains(string(data), "wlan0") {
				t.Errorf("export is missing the interface: %s", data)
			}

			if err := f.ctl.DeleteConnection("home"); err != nil {
				t.Fatalf("DeleteConnection failed: %v", err)
			}
			id, err := f.ctl.ImportConnection(data, format)
			if err != nil {
				t.Fatalf("ImportConnection failed: %v", err)
			}
			conn, _ := f.ctl.GetConnection(id)
			if conn.Name != "home" || conn.Type != model.ConnectionTypeWiFi || conn.Autoconnect || conn.Device != "wlan0" {
				t.Errorf("imported connection differs: %+v", conn)
			}
		})
	}

	t.Run("bad input", func(t *testing.T) {
		f := newFixture(t)
		f.addConnection(t, "office")

		_, err := f.ctl.ExportConnection("office", "xml")
		assertCode(t, err, errors.ErrCodeInvalidParameter)
		_, err = f.ctl.ImportConnection([]byte("{not json"), FormatJSON)
		assertCode(t, err, errors.ErrCodeParse)
		_, err = f.ctl.ImportConnection([]byte("id: x"), "toml")
		assertCode(t, err, errors.ErrCodeInvalidParameter)
	})
}
