package control

import (
	"context"
	"testing"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/mocks"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/settings"
	"github.com/maksimkurb/netctl/src/internal/state"
	"github.com/maksimkurb/netctl/src/internal/vpn"
)

func (f *fixture) addVpn(t *testing.T, name, typ string) {
	t.Helper()
	if _, err := f.ctl.AddVpn(settings.Bag{"name": name, "type": typ}); err != nil {
		t.Fatalf("AddVpn(%s) failed: %v", name, err)
	}
}

func (f *fixture) vpnState(t *testing.T, name string) state.VpnState {
	t.Helper()
	tunnel, err := f.ctl.GetVpn(name)
	if err != nil {
		t.Fatalf("GetVpn(%s) failed: %v", name, err)
	}
	return tunnel.State
}

func TestAddVpn(t *testing.T) {
	f := newFixture(t)

	tunnel, err := f.ctl.AddVpn(settings.Bag{
		"name":           "wg0",
		"type":           "wireguard",
		"local_ip":       "10.8.0.2",
		"remote_address": "vpn.example.com:51820",
	})
	if err != nil {
		t.Fatalf("AddVpn failed: %v", err)
	}
	if tunnel.State != state.VpnDisconnected || tunnel.Type != model.VpnTypeWireGuard {
		t.Errorf("unexpected tunnel %+v", tunnel)
	}

	_, err = f.ctl.AddVpn(settings.Bag{"name": "wg0", "type": "wireguard"})
	assertCode(t, err, errors.ErrCodeAlreadyExists)

	_, err = f.ctl.AddVpn(settings.Bag{"name": "wg1", "type": "wireguard", "local_ip": "not-an-ip"})
	assertCode(t, err, errors.ErrCodeInvalidParameter)

	if n := len(f.ctl.ListVpns()); n != 1 {
		t.Errorf("expected 1 tunnel, got %d", n)
	}
	if n := f.pub.Count(events.VpnAdded); n != 1 {
		t.Errorf("expected 1 VpnAdded, got %d", n)
	}
}

func TestConnectVpn(t *testing.T) {
	ctx := context.Background()

	t.Run("connect and disconnect", func(t *testing.T) {
		f := newFixture(t)
		backend := &mocks.MockVpnBackend{}
		f.vpns.Set(model.VpnTypeWireGuard, backend)
		f.addVpn(t, "wg0", "wireguard")

		if err := f.ctl.ConnectVpn(ctx, "wg0"); err != nil {
			t.Fatalf("ConnectVpn failed: %v", err)
		}
		if st := f.vpnState(t, "wg0"); st != state.VpnConnected {
			t.Errorf("expected Connected, got %s", st)
		}
		if err := f.ctl.DisconnectVpn(ctx, "wg0"); err != nil {
			t.Fatalf("DisconnectVpn failed: %v", err)
		}
		if st := f.vpnState(t, "wg0"); st != state.VpnDisconnected {
			t.Errorf("expected Disconnected, got %s", st)
		}
		if backend.ConnectCalls != 1 || backend.DisconnectCalls != 1 {
			t.Errorf("unexpected backend calls: %d connect, %d disconnect", backend.ConnectCalls, backend.DisconnectCalls)
		}
		// Connecting, Connected, Disconnecting, Disconnected
		if n := f.pub.Count(events.VpnStateChanged); n != 4 {
			t.Errorf("expected 4 VpnStateChanged, got %d", n)
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		f := newFixture(t)
		f.vpns.Set(model.VpnTypeWireGuard, &mocks.MockVpnBackend{
			ConnectFunc: func(ctx context.Context, tunnel *model.VpnTunnel) error {
				return errors.NewCommandFailedError("ip link set wg0 up", nil, "Cannot find device", nil)
			},
		})
		f.addVpn(t, "wg0", "wireguard")

		assertCode(t, f.ctl.ConnectVpn(ctx, "wg0"), errors.ErrCodeCommandFailed)
		if st := f.vpnState(t, "wg0"); st != state.VpnFailed {
			t.Errorf("expected Failed, got %s", st)
		}
	})

	t.Run("link backend drives the interface", func(t *testing.T) {
		f := newFixture(t)
		f.addVpn(t, "wg0", "wireguard")

		// no such link
		if err := f.ctl.ConnectVpn(ctx, "wg0"); err == nil {
			t.Fatal("expected an error for a missing link")
		}
		if st := f.vpnState(t, "wg0"); st != state.VpnFailed {
			t.Errorf("expected Failed, got %s", st)
		}
	})

	t.Run("unsupported type keeps the state", func(t *testing.T) {
		f := newFixture(t)
		f.addVpn(t, "tor0", "tor")

		assertCode(t, f.ctl.ConnectVpn(ctx, "tor0"), errors.ErrCodeNotSupported)
		if st := f.vpnState(t, "tor0"); st != state.VpnDisconnected {
			t.Errorf("expected Disconnected, got %s", st)
		}
		assertCode(t, f.ctl.DisconnectVpn(ctx, "tor0"), errors.ErrCodeNotSupported)
	})

	t.Run("tor when enabled", func(t *testing.T) {
		f := newFixture(t)
		f.vpns.Set(model.VpnTypeTor, vpn.TorBackend{})
		if _, err := f.ctl.AddVpn(settings.Bag{"name": "tor0", "type": "tor", "tor": map[string]any{"socks_port": 9150}}); err != nil {
			t.Fatalf("AddVpn failed: %v", err)
		}

		if err := f.ctl.ConnectVpn(ctx, "tor0"); err != nil {
			t.Fatalf("ConnectVpn failed: %v", err)
		}
		if st := f.vpnState(t, "tor0"); st != state.VpnConnected {
			t.Errorf("expected Connected, got %s", st)
		}
	})

	t.Run("illegal transitions", func(t *testing.T) {
		f := newFixture(t)
		f.vpns.Set(model.VpnTypeWireGuard, &mocks.MockVpnBackend{})
		f.addVpn(t, "wg0", "wireguard")

		assertCode(t, f.ctl.DisconnectVpn(ctx, "wg0"), errors.ErrCodeInvalidState)
		assertCode(t, f.ctl.ConnectVpn(ctx, "wg9"), errors.ErrCodeNotFound)
	})
}

func TestUpdateVpnState(t *testing.T) {
	f := newFixture(t)
	f.addVpn(t, "wg0", "wireguard")

	assertCode(t, f.ctl.UpdateVpnState("wg0", state.VpnConnected), errors.ErrCodeInvalidState)
	if err := f.ctl.UpdateVpnState("wg0", state.VpnConnecting); err != nil {
		t.Fatalf("UpdateVpnState failed: %v", err)
	}
	if st := f.vpnState(t, "wg0"); st != state.VpnConnecting {
		t.Errorf("expected Connecting, got %s", st)
	}
}

func TestRemoveVpn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	backend := &mocks.MockVpnBackend{}
	f.vpns.Set(model.VpnTypeWireGuard, backend)
	f.addVpn(t, "wg0", "wireguard")
	if err := f.ctl.ConnectVpn(ctx, "wg0"); err != nil {
		t.Fatalf("ConnectVpn failed: %v", err)
	}

	backend.DisconnectFunc = func(ctx context.Context, tunnel *model.VpnTunnel) error {
		return errors.NewCommandFailedError("ip link set wg0 down", nil, "", nil)
	}
	if err := f.ctl.RemoveVpn(ctx, "wg0"); err != nil {
		t.Fatalf("RemoveVpn failed: %v", err)
	}
	if backend.DisconnectCalls != 1 {
		t.Errorf("expected the tunnel to be brought down first, got %d calls", backend.DisconnectCalls)
	}
	if _, err := f.ctl.GetVpn("wg0"); err == nil {
		t.Error("tunnel should be removed even when teardown fails")
	}
	assertCode(t, f.ctl.RemoveVpn(ctx, "wg0"), errors.ErrCodeNotFound)
}
