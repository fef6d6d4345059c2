package control

import (
	"context"
	"net/netip"
	"strings"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
)

// AddRoute inserts or replaces the route keyed by destination. Empty gateway
// and device mean absent.
func (c *NetworkControl) AddRoute(ctx context.Context, destination, gateway, device string, metric uint32) (err error) {
	defer c.finish("add_route", &err)

	r := &model.Route{
		Destination: strings.TrimSpace(destination),
		Gateway:     strings.TrimSpace(gateway),
		Device:      strings.TrimSpace(device),
		Metric:      metric,
		Type:        model.RouteTypeUnicast,
		Table:       c.opts.RouteTable,
		Scope:       model.RouteScopeUniverse,
	}
	if err := validateRoute(r); err != nil {
		return err
	}
	return c.putRoute(ctx, r)
}

// AddRouteEntry is AddRoute for a fully specified route. Zero type, scope
// and table take the defaults.
func (c *NetworkControl) AddRouteEntry(ctx context.Context, route *model.Route) (err error) {
	defer c.finish("add_route", &err)

	if route == nil {
		return errors.NewInvalidParameterError("route cannot be empty", nil)
	}
	r := route.Clone()
	if r.Type == "" {
		r.Type = model.RouteTypeUnicast
	}
	if r.Scope == "" {
		r.Scope = model.RouteScopeUniverse
	}
	if r.Table == 0 {
		r.Table = c.opts.RouteTable
	}
	if err := validateRoute(r); err != nil {
		return err
	}
	return c.putRoute(ctx, r)
}

func (c *NetworkControl) putRoute(ctx context.Context, r *model.Route) error {
	if err := c.routeBackend.Replace(ctx, r); err != nil {
		return err
	}
	c.routes.Put(r)
	log.Infof("Route %s via %q dev %q metric %d", r.Destination, r.Gateway, r.Device, r.Metric)
	c.notify.routeAdded(r)
	return nil
}

func validateRoute(r *model.Route) error {
	if r.Destination == "" {
		return errors.NewInvalidParameterError("route destination cannot be empty", nil)
	}
	if !r.IsDefault() {
		if _, err := netip.ParsePrefix(r.Destination); err != nil {
			if _, err := netip.ParseAddr(r.Destination); err != nil {
				return errors.NewInvalidParameterError("route destination '"+r.Destination+"' must be 'default', a CIDR or an address", err)
			}
		}
	}
	if r.Gateway != "" {
		if _, err := netip.ParseAddr(r.Gateway); err != nil {
			return errors.NewInvalidParameterError("gateway '"+r.Gateway+"' is not an IP address", err)
		}
	}
	return nil
}

func (c *NetworkControl) RemoveRoute(ctx context.Context, destination string) (err error) {
	defer c.finish("remove_route", &err)

	if destination == "" {
		return errors.NewInvalidParameterError("route destination cannot be empty", nil)
	}
	r, err := c.routes.Get(destination)
	if err != nil {
		return err
	}
	if err := c.routeBackend.Delete(ctx, r); err != nil {
		return err
	}
	removed, err := c.routes.Remove(destination)
	if err != nil {
		return err
	}
	log.Infof("Removed route %s", destination)
	c.notify.routeRemoved(removed)
	return nil
}

func (c *NetworkControl) GetRoute(destination string) (r *model.Route, err error) {
	defer c.finish("get_route", &err)

	if destination == "" {
		return nil, errors.NewInvalidParameterError("route destination cannot be empty", nil)
	}
	return c.routes.Get(destination)
}

func (c *NetworkControl) ListRoutes() []*model.Route {
	return c.routes.List()
}

func (c *NetworkControl) RouteCount() int {
	return c.routes.Len()
}

// SetDefaultGateway records gateway for its address family and stores the
// "default" route with metric 0.
func (c *NetworkControl) SetDefaultGateway(ctx context.Context, gateway, device string) (err error) {
	defer c.finish("set_default_gateway", &err)

	gateway = strings.TrimSpace(gateway)
	if gateway == "" {
		return errors.NewInvalidParameterError("gateway cannot be empty", nil)
	}
	r := &model.Route{
		Destination: model.DefaultDestination,
		Gateway:     gateway,
		Device:      strings.TrimSpace(device),
		Metric:      0,
		Type:        model.RouteTypeUnicast,
		Table:       c.opts.RouteTable,
		Scope:       model.RouteScopeUniverse,
	}
	if err := validateRoute(r); err != nil {
		return err
	}
	if err := c.routeBackend.Replace(ctx, r); err != nil {
		return err
	}

	c.routes.SetDefaultGateway(r)
	ipv6 := model.IsIPv6Address(gateway)
	log.Infof("Default gateway (%s) set to %s", family(ipv6), gateway)
	c.notify.routeAdded(r)
	c.notify.gatewayChanged(gateway, ipv6)
	return nil
}

// ClearDefaultGateway forgets the gateway of one family and removes the
// "default" route when it belongs to that family.
func (c *NetworkControl) ClearDefaultGateway(ctx context.Context, ipv6 bool) (err error) {
	defer c.finish("clear_default_gateway", &err)

	if r, err := c.routes.Get(model.DefaultDestination); err == nil && r.IsIPv6() == ipv6 {
		if err := c.routeBackend.Delete(ctx, r); err != nil {
			return err
		}
	}

	previous, removed := c.routes.ClearDefaultGateway(ipv6)
	if removed != nil {
		c.notify.routeRemoved(removed)
	}
	if previous != "" {
		log.Infof("Default gateway (%s) %s cleared", family(ipv6), previous)
		c.notify.gatewayChanged("", ipv6)
	}
	return nil
}

func (c *NetworkControl) DefaultGateway() model.DefaultGateways {
	return c.routes.Gateways()
}

// HasDefaultRoute reports whether the registry holds a default route or a
// default gateway.
func (c *NetworkControl) HasDefaultRoute() bool {
	gw := c.routes.Gateways()
	if gw.IPv4 != "" || gw.IPv6 != "" {
		return true
	}
	_, err := c.routes.Get(model.DefaultDestination)
	return err == nil
}

// ClearAllRoutes removes every route and both default gateways. Kernel
// routes are deleted first; the first failure aborts before the registry
// is touched.
func (c *NetworkControl) ClearAllRoutes(ctx context.Context) (err error) {
	defer c.finish("clear_all_routes", &err)

	for _, r := range c.routes.List() {
		if err := c.routeBackend.Delete(ctx, r); err != nil {
			return err
		}
	}

	gw := c.routes.Gateways()
	removed := c.routes.Clear()
	for _, r := range removed {
		c.notify.routeRemoved(r)
	}
	if gw.IPv4 != "" {
		c.notify.gatewayChanged("", false)
	}
	if gw.IPv6 != "" {
		c.notify.gatewayChanged("", true)
	}
	log.Infof("Cleared %d routes", len(removed))
	return nil
}

func family(ipv6 bool) string {
	if ipv6 {
		return "IPv6"
	}
	return "IPv4"
}
