package control

import (
	"context"

	"github.com/maksimkurb/netctl/src/internal/dnsserver"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
)

// NetworkState derives the aggregate state from device states and the last
// connectivity classification.
func (c *NetworkControl) NetworkState() state.NetworkState {
	devices := c.devices.List()
	samples := make([]state.DeviceSample, 0, len(devices))
	for _, d := range devices {
		samples = append(samples, state.DeviceSample{
			State:    d.State,
			Loopback: d.Type == model.DeviceTypeLoopback,
		})
	}
	return state.DeriveNetworkState(samples, c.Connectivity(), c.discovered.Load())
}

func (c *NetworkControl) Connectivity() state.Connectivity {
	return state.Connectivity(c.connectivityValue.Load())
}

// CheckConnectivity asks the connectivity checker for a fresh
// classification. Without a checker the value stays Unknown.
func (c *NetworkControl) CheckConnectivity(ctx context.Context) (result state.Connectivity, err error) {
	defer c.finish("check_connectivity", &err)

	if c.connectivity == nil {
		return c.Connectivity(), nil
	}
	result, err = c.connectivity.Check(ctx)
	if err != nil {
		return state.ConnectivityUnknown, err
	}
	if prev := state.Connectivity(c.connectivityValue.Swap(uint32(result))); prev != result {
		log.Infof("Connectivity changed: %s -> %s", prev, result)
		c.notify.connectivity(result)
	}
	c.refreshNetworkState()
	return result, nil
}

// refreshNetworkState publishes NetworkStateChanged when the derived state moved.
func (c *NetworkControl) refreshNetworkState() {
	current := c.NetworkState()
	if prev := state.NetworkState(c.lastState.Swap(uint32(current))); prev != current {
		log.Infof("Network state changed: %s -> %s", prev, current)
		c.notify.networkState(current)
	}
	c.recorder.SetNetworkState(uint32(current), uint32(c.Connectivity()))
}

// Snapshot is a read of every store. Stores are read one after the other, so
// the parts are individually consistent but may not match each other.
type Snapshot struct {
	NetworkState state.NetworkState        `json:"network_state"`
	Connectivity state.Connectivity        `json:"connectivity"`
	Devices      []*model.Device           `json:"devices"`
	Connections  []*model.Connection       `json:"connections"`
	Routes       []*model.Route            `json:"routes"`
	Gateways     model.DefaultGateways     `json:"gateways"`
	Vpns         []*model.VpnTunnel        `json:"vpns"`
	WiFi         model.AccessPointSnapshot `json:"wifi"`
	DNS          dnsserver.Status          `json:"dns"`
}

func (c *NetworkControl) Snapshot() Snapshot {
	return Snapshot{
		NetworkState: c.NetworkState(),
		Connectivity: c.Connectivity(),
		Devices:      c.devices.List(),
		Connections:  c.connections.List(),
		Routes:       c.routes.List(),
		Gateways:     c.routes.Gateways(),
		Vpns:         c.vpns.List(),
		WiFi:         c.aps.Snapshot(),
		DNS:          c.dns.Status(),
	}
}
