package control

import (
	"context"

	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/wifi"
)

func (c *NetworkControl) orchestrator() (*wifi.Orchestrator, error) {
	if c.wifi == nil {
		return nil, errors.NewNotSupportedError("WiFi support is not configured")
	}
	return c.wifi, nil
}

// Scan triggers a scan and returns the new access point list.
func (c *NetworkControl) Scan(ctx context.Context, iface string) (aps []model.AccessPoint, err error) {
	defer c.finish("wifi_scan", &err)
	o, err := c.orchestrator()
	if err != nil {
		return nil, err
	}
	aps, err = o.Scan(ctx, iface)
	c.storesChanged()
	return aps, err
}

func (c *NetworkControl) WiFiConnect(ctx context.Context, iface, ssid, password string) (err error) {
	defer c.finish("wifi_connect", &err)
	o, err := c.orchestrator()
	if err != nil {
		return err
	}
	return o.Connect(ctx, iface, ssid, password)
}

func (c *NetworkControl) WiFiDisconnect(ctx context.Context, iface string) (err error) {
	defer c.finish("wifi_disconnect", &err)
	o, err := c.orchestrator()
	if err != nil {
		return err
	}
	return o.Disconnect(ctx, iface)
}

// WiFiStatus returns the associated SSID, or "" when not associated.
func (c *NetworkControl) WiFiStatus(ctx context.Context, iface string) (ssid string, err error) {
	defer c.finish("wifi_status", &err)
	o, err := c.orchestrator()
	if err != nil {
		return "", err
	}
	return o.Status(ctx, iface)
}

func (c *NetworkControl) SignalStrength(ctx context.Context, iface string) (rssi int32, err error) {
	defer c.finish("wifi_signal_strength", &err)
	o, err := c.orchestrator()
	if err != nil {
		return 0, err
	}
	return o.SignalStrength(ctx, iface)
}

// AccessPoints returns the scan cache. It works without a supplicant.
func (c *NetworkControl) AccessPoints() model.AccessPointSnapshot {
	return c.aps.Snapshot()
}

func (c *NetworkControl) ListNetworks(ctx context.Context, iface string) (networks []domain.ConfiguredNetwork, err error) {
	defer c.finish("wifi_list_networks", &err)
	o, err := c.orchestrator()
	if err != nil {
		return nil, err
	}
	return o.ListNetworks(ctx, iface)
}

func (c *NetworkControl) RemoveNetwork(ctx context.Context, iface string, id int) (err error) {
	defer c.finish("wifi_remove_network", &err)
	o, err := c.orchestrator()
	if err != nil {
		return err
	}
	return o.RemoveNetwork(ctx, iface, id)
}

// SupplicantAvailable reports whether a supplicant is configured and installed.
func (c *NetworkControl) SupplicantAvailable() bool {
	return c.wifi != nil && c.wifi.SupplicantAvailable()
}
