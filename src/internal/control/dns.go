package control

import (
	"context"

	"github.com/maksimkurb/netctl/src/internal/dnsserver"
)

func (c *NetworkControl) StartDNSServer(ctx context.Context, address string, port uint16, forwarders []string) (err error) {
	defer c.finish("start_server", &err)
	return c.dns.Start(ctx, address, port, forwarders)
}

func (c *NetworkControl) StopDNSServer(ctx context.Context) (err error) {
	defer c.finish("stop_server", &err)
	return c.dns.Stop(ctx)
}

func (c *NetworkControl) AddForwarder(f string) (err error) {
	defer c.finish("add_forwarder", &err)
	return c.dns.AddForwarder(f)
}

// RemoveForwarder fails with NOT_FOUND when f is not configured.
func (c *NetworkControl) RemoveForwarder(f string) (err error) {
	defer c.finish("remove_forwarder", &err)
	return c.dns.RemoveForwarder(f)
}

func (c *NetworkControl) SetForwarders(forwarders []string) (err error) {
	defer c.finish("set_forwarders", &err)
	return c.dns.SetForwarders(forwarders)
}

func (c *NetworkControl) Forwarders() []string {
	return c.dns.Forwarders()
}

func (c *NetworkControl) DNSStatus() dnsserver.Status {
	return c.dns.Status()
}
