package control

import (
	"context"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/settings"
	"github.com/maksimkurb/netctl/src/internal/state"
	"github.com/maksimkurb/netctl/src/internal/vpn"
)

// AddVpn validates the settings bag and registers a disconnected tunnel.
// Names are unique.
func (c *NetworkControl) AddVpn(bag settings.Bag) (tunnel *model.VpnTunnel, err error) {
	defer c.finish("add_vpn", &err)

	parsed, err := settings.ParseVpn(bag)
	if err != nil {
		return nil, err
	}
	t := parsed.Tunnel()
	t.State = state.VpnDisconnected
	ch, err := c.vpns.Add(t)
	if err != nil {
		return nil, err
	}
	log.Infof("Added %s tunnel %s", t.Type, t.Name)
	c.notify.vpn(ch)
	return ch.New, nil
}

func (c *NetworkControl) GetVpn(name string) (t *model.VpnTunnel, err error) {
	defer c.finish("get_vpn", &err)
	return c.vpns.Get(name)
}

func (c *NetworkControl) ListVpns() []*model.VpnTunnel {
	return c.vpns.List()
}

// UpdateVpnState records a requested state change, validated against the
// tunnel state machine.
func (c *NetworkControl) UpdateVpnState(name string, st state.VpnState) (err error) {
	defer c.finish("update_vpn_state", &err)

	ch, err := c.vpns.SetState(name, st)
	if err != nil {
		return err
	}
	c.notify.vpn(ch)
	return nil
}

// RemoveVpn unregisters a tunnel, bringing it down first when it is up.
// A failed teardown is logged and does not keep the tunnel registered.
func (c *NetworkControl) RemoveVpn(ctx context.Context, name string) (err error) {
	defer c.finish("remove_vpn", &err)

	t, err := c.vpns.Get(name)
	if err != nil {
		return err
	}
	if t.State == state.VpnConnected || t.State == state.VpnConnecting {
		if err := c.vpnBackends.For(t.Type).Disconnect(ctx, t); err != nil {
			log.Warnf("Failed to bring down tunnel %s before removal: %v", name, err)
		}
	}
	removed, err := c.vpns.Remove(name)
	if err != nil {
		return err
	}
	log.Infof("Removed tunnel %s", name)
	c.notify.vpn(storeRemoved(removed))
	return nil
}

// ConnectVpn drives Connecting, then Connected or Failed depending on the
// backend. Types without a backend fail with NOT_SUPPORTED and keep their state.
func (c *NetworkControl) ConnectVpn(ctx context.Context, name string) (err error) {
	defer c.finish("connect_vpn", &err)

	t, err := c.vpns.Get(name)
	if err != nil {
		return err
	}
	backend := c.vpnBackends.For(t.Type)
	if unsupported, ok := backend.(vpn.UnsupportedBackend); ok {
		return errors.NewNotSupportedError(unsupported.Reason)
	}

	return c.driveVpn(ctx, t, state.VpnConnecting, state.VpnConnected, backend.Connect)
}

// DisconnectVpn drives Disconnecting, then Disconnected or Failed.
func (c *NetworkControl) DisconnectVpn(ctx context.Context, name string) (err error) {
	defer c.finish("disconnect_vpn", &err)

	t, err := c.vpns.Get(name)
	if err != nil {
		return err
	}
	backend := c.vpnBackends.For(t.Type)
	if unsupported, ok := backend.(vpn.UnsupportedBackend); ok {
		return errors.NewNotSupportedError(unsupported.Reason)
	}

	return c.driveVpn(ctx, t, state.VpnDisconnecting, state.VpnDisconnected, backend.Disconnect)
}

func (c *NetworkControl) driveVpn(ctx context.Context, t *model.VpnTunnel, via, to state.VpnState, call func(context.Context, *model.VpnTunnel) error) error {
	ch, err := c.vpns.SetState(t.Name, via)
	if err != nil {
		return err
	}
	c.notify.vpn(ch)

	result, final := to, error(nil)
	if err := call(ctx, ch.New); err != nil {
		log.Warnf("Tunnel %s failed while %s: %v", t.Name, via, err)
		result, final = state.VpnFailed, err
	}

	ch, err = c.vpns.SetState(t.Name, result)
	if err != nil {
		// removed or changed concurrently
		log.Debugf("Not recording %s for tunnel %s: %v", result, t.Name, err)
		return final
	}
	c.notify.vpn(ch)
	return final
}
