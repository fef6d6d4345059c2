package control

import (
	"context"
	"net/netip"
	"slices"
	"strings"

	"github.com/maksimkurb/netctl/src/internal/classifier"
	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
	"github.com/maksimkurb/netctl/src/internal/store"
)

// AddDevice inserts d or replaces the device with the same name. A parent
// must already be registered and gets d added to its children.
func (c *NetworkControl) AddDevice(d *model.Device) (err error) {
	defer c.finish("add_device", &err)

	if d == nil || strings.TrimSpace(d.Name) == "" {
		return errors.NewInvalidParameterError("device name cannot be empty", nil)
	}
	if !d.State.Valid() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "invalid device state %d", uint32(d.State))
	}

	changes, err := c.devices.PutLinked(d)
	if err != nil {
		return err
	}
	for _, ch := range changes {
		c.notify.device(ch)
	}
	c.afterDeviceChange(changes[0])
	return nil
}

func (c *NetworkControl) GetDevice(name string) (d *model.Device, err error) {
	defer c.finish("get_device", &err)
	return c.devices.Get(name)
}

func (c *NetworkControl) ListDevices() []*model.Device {
	return c.devices.List()
}

func (c *NetworkControl) GetDevicesByType(t model.DeviceType) []*model.Device {
	var out []*model.Device
	for _, d := range c.devices.List() {
		if d.Type == t {
			out = append(out, d)
		}
	}
	if out == nil {
		out = []*model.Device{}
	}
	return out
}

// UpdateDeviceState records a requested state change. The transition must be
// legal according to the device state machine.
func (c *NetworkControl) UpdateDeviceState(name string, st state.DeviceState) (err error) {
	defer c.finish("update_device_state", &err)

	ch, err := c.devices.SetState(name, st, true)
	if err != nil {
		return err
	}
	c.notify.device(ch)
	c.afterDeviceChange(ch)
	return nil
}

// ObserveDeviceState records a state seen in the outside world without
// transition checks. Unknown devices are ignored.
func (c *NetworkControl) ObserveDeviceState(name string, st state.DeviceState) {
	ch, err := c.devices.SetState(name, st, false)
	if err != nil {
		log.Debugf("Not recording state %s of %s: %v", st, name, err)
		return
	}
	c.notify.device(ch)
	c.afterDeviceChange(ch)
}

// RemoveDevice unregisters a device. Connections bound to it are unbound and
// deactivated, its routes are removed and its children lose their parent.
func (c *NetworkControl) RemoveDevice(name string) (err error) {
	defer c.finish("remove_device", &err)

	removed, err := c.devices.Remove(name)
	if err != nil {
		return err
	}
	log.Infof("Removed device %s", name)
	c.notify.device(storeRemoved(removed))

	for _, ch := range c.connections.UpdateWhere(
		func(conn *model.Connection) bool { return conn.Device == name },
		func(conn *model.Connection) {
			conn.Device = ""
			if conn.State.IsActive() || conn.State == state.ConnectionDeactivating {
				conn.State = state.ConnectionDeactivated
			}
		},
	) {
		c.notify.connection(ch)
	}

	for _, r := range c.routes.RemoveWhere(func(r *model.Route) bool { return r.Device == name }) {
		c.notify.routeRemoved(r)
		if r.IsDefault() {
			if previous, _ := c.routes.ClearDefaultGateway(r.IsIPv6()); previous != "" {
				c.notify.gatewayChanged("", r.IsIPv6())
			}
		}
	}

	for _, ch := range c.devices.UpdateWhere(
		func(d *model.Device) bool { return d.Parent == name || slices.Contains(d.Children, name) },
		func(d *model.Device) {
			if d.Parent == name {
				d.Parent = ""
			}
			d.Children = slices.DeleteFunc(d.Children, func(child string) bool { return child == name })
		},
	) {
		c.notify.device(ch)
	}

	c.refreshNetworkState()
	return nil
}

// DeleteDevice deletes a virtual link from the system and unregisters it.
// Physical devices can only be brought down.
func (c *NetworkControl) DeleteDevice(ctx context.Context, name string) (err error) {
	defer c.finish("delete_device", &err)

	d, err := c.devices.Get(name)
	if err != nil {
		return err
	}
	if !d.Type.IsVirtual() {
		return errors.NewInvalidParameterError("device '"+name+"' of type "+d.Type.String()+" is not virtual and cannot be deleted", nil)
	}
	if err := c.interfaces.DeleteDevice(ctx, name); err != nil {
		return err
	}
	return c.RemoveDevice(name)
}

// DeviceConfig is a requested change of a link. Empty fields are left alone.
type DeviceConfig struct {
	// State is "up", "down" or empty.
	State           string   `json:"state,omitempty"`
	MTU             uint32   `json:"mtu,omitempty"`
	MAC             string   `json:"mac,omitempty"`
	AddAddresses    []string `json:"add_addresses,omitempty"`
	RemoveAddresses []string `json:"remove_addresses,omitempty"`
}

func (cfg DeviceConfig) validate() ([]netip.Prefix, []netip.Prefix, error) {
	switch cfg.State {
	case "", "up", "down":
	default:
		return nil, nil, errors.NewInvalidParameterError("state must be 'up' or 'down', got '"+cfg.State+"'", nil)
	}
	if cfg.MTU != 0 && (cfg.MTU < 68 || cfg.MTU > 65535) {
		return nil, nil, errors.Newf(errors.ErrCodeInvalidParameter, "mtu %d out of range 68-65535", cfg.MTU)
	}
	add, err := parsePrefixes(cfg.AddAddresses)
	if err != nil {
		return nil, nil, err
	}
	del, err := parsePrefixes(cfg.RemoveAddresses)
	if err != nil {
		return nil, nil, err
	}
	return add, del, nil
}

func parsePrefixes(addrs []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(addrs))
	for _, a := range addrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(a))
		if err != nil {
			return nil, errors.NewInvalidParameterError("address '"+a+"' must be in ip/prefix form", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ConfigureDevice applies cfg through the interface collaborator and then
// refreshes the device entry from it. Input is validated before any call.
func (c *NetworkControl) ConfigureDevice(ctx context.Context, name string, cfg DeviceConfig) (err error) {
	defer c.finish("configure_device", &err)

	if !c.devices.Exists(name) {
		return errors.NewNotFoundError("device", name)
	}
	add, del, err := cfg.validate()
	if err != nil {
		return err
	}

	if cfg.MTU != 0 {
		if err := c.interfaces.SetMTU(ctx, name, cfg.MTU); err != nil {
			return err
		}
	}
	if cfg.MAC != "" {
		if err := c.interfaces.SetMAC(ctx, name, cfg.MAC); err != nil {
			return err
		}
	}
	for _, p := range del {
		if err := c.interfaces.DelIP(ctx, name, p.Addr().String(), p.Bits()); err != nil {
			return err
		}
	}
	for _, p := range add {
		if err := c.interfaces.AddIP(ctx, name, p.Addr().String(), p.Bits()); err != nil {
			return err
		}
	}
	switch cfg.State {
	case "up":
		err = c.interfaces.SetUp(ctx, name)
	case "down":
		err = c.interfaces.SetDown(ctx, name)
	}
	if err != nil {
		return err
	}

	return c.refreshDevice(ctx, name)
}

// refreshDevice reloads link attributes and the observed state of one device.
func (c *NetworkControl) refreshDevice(ctx context.Context, name string) error {
	info, err := c.interfaces.GetInterfaceInfo(ctx, name)
	if err != nil {
		return err
	}
	fresh := deviceFromInfo(info, classifier.Result{})
	ch, err := c.devices.Update(name, func(d *model.Device) error {
		d.HwAddress = fresh.HwAddress
		d.MTU = fresh.MTU
		d.IPv4Address = fresh.IPv4Address
		d.IPv6Address = fresh.IPv6Address
		d.Addresses = fresh.Addresses
		d.Flags = fresh.Flags
		d.Stats = fresh.Stats
		switch {
		case fresh.HasFlag("UP") && d.State.IsDown():
			d.State = state.DeviceActivated
		case !fresh.HasFlag("UP") && !d.State.IsDown():
			d.State = state.DeviceDisconnected
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.notify.device(ch)
	c.afterDeviceChange(ch)
	return nil
}

// DeviceStats returns live counters from the interface collaborator.
func (c *NetworkControl) DeviceStats(ctx context.Context, name string) (stats *model.DeviceStats, err error) {
	defer c.finish("device_stats", &err)

	if !c.devices.Exists(name) {
		return nil, errors.NewNotFoundError("device", name)
	}
	info, err := c.interfaces.GetInterfaceInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	if info.Stats == nil {
		return &model.DeviceStats{}, nil
	}
	return info.Stats, nil
}

// afterDeviceChange runs the reactions to a device state change: reaching
// Activated promotes activating connections, going down deactivates them.
func (c *NetworkControl) afterDeviceChange(ch store.Change[*model.Device]) {
	if ch.New == nil {
		return
	}
	if ch.Old != nil && ch.Old.State == ch.New.State {
		return
	}
	name, st := ch.New.Name, ch.New.State

	switch {
	case st == state.DeviceActivated:
		c.promoteConnections(name)
	case st.IsDown():
		for _, cc := range c.connections.UpdateWhere(
			func(conn *model.Connection) bool {
				return conn.Device == name && (conn.State.IsActive() || conn.State == state.ConnectionDeactivating)
			},
			func(conn *model.Connection) { conn.State = state.ConnectionDeactivated },
		) {
			log.Infof("Connection %s deactivated, %s is %s", cc.New.Name, name, st)
			c.notify.connection(cc)
		}
	}
	c.refreshNetworkState()
}

// promoteConnections moves the connections activating on device to Activated.
func (c *NetworkControl) promoteConnections(device string) {
	for _, cc := range c.connections.UpdateWhere(
		func(conn *model.Connection) bool {
			return conn.Device == device && conn.State == state.ConnectionActivating
		},
		func(conn *model.Connection) { conn.State = state.ConnectionActivated },
	) {
		log.Infof("Connection %s activated on %s", cc.New.Name, device)
		c.notify.connection(cc)
	}
}

// deviceFromInfo builds a device entry from what the collaborator reports.
// The first address of each family fills the IPv4/IPv6 slots and the UP flag
// decides between Activated and Disconnected.
func deviceFromInfo(info *domain.InterfaceInfo, class classifier.Result) *model.Device {
	d := model.NewDevice(info.Name, class.Type)
	d.Capabilities = class.Capabilities
	d.HwAddress = info.HwAddress
	if info.MTU != 0 {
		d.MTU = info.MTU
	}
	d.Flags = slices.Clone(info.Flags)
	if info.Stats != nil {
		stats := *info.Stats
		d.Stats = &stats
	}
	for _, a := range info.Addresses {
		cidr := a.String()
		d.Addresses = append(d.Addresses, cidr)
		if model.IsIPv6Address(a.IP) {
			if d.IPv6Address == "" {
				d.IPv6Address = cidr
			}
		} else if d.IPv4Address == "" {
			d.IPv4Address = cidr
		}
	}
	if d.HasFlag("UP") {
		d.State = state.DeviceActivated
	}
	d.Parent = info.Master
	if d.Parent == "" {
		d.Parent = info.Parent
	}
	return d
}
