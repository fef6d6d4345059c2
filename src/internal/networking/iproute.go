package networking

import (
	"context"
	"fmt"
	"net"

	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

var routeTypes = map[model.RouteType]int{
	model.RouteTypeUnicast:     unix.RTN_UNICAST,
	model.RouteTypeLocal:       unix.RTN_LOCAL,
	model.RouteTypeBroadcast:   unix.RTN_BROADCAST,
	model.RouteTypeMulticast:   unix.RTN_MULTICAST,
	model.RouteTypeBlackhole:   unix.RTN_BLACKHOLE,
	model.RouteTypeUnreachable: unix.RTN_UNREACHABLE,
	model.RouteTypeProhibit:    unix.RTN_PROHIBIT,
}

var routeScopes = map[model.RouteScope]netlink.Scope{
	model.RouteScopeUniverse: netlink.SCOPE_UNIVERSE,
	model.RouteScopeSite:     netlink.SCOPE_SITE,
	model.RouteScopeLink:     netlink.SCOPE_LINK,
	model.RouteScopeHost:     netlink.SCOPE_HOST,
	model.RouteScopeNowhere:  netlink.SCOPE_NOWHERE,
}

// KernelRoutes implements domain.RouteBackend by replacing and deleting
// kernel routes through netlink.
type KernelRoutes struct {
	handle *netlink.Handle
}

var _ domain.RouteBackend = (*KernelRoutes)(nil)

func NewKernelRoutes() *KernelRoutes {
	return &KernelRoutes{handle: &netlink.Handle{}}
}

func (k *KernelRoutes) Replace(ctx context.Context, route *model.Route) error {
	nr, err := k.build(route)
	if err != nil {
		return err
	}
	log.Debugf("Replacing kernel route [%s]", describeRoute(route))
	if err := k.handle.RouteReplace(nr); err != nil {
		return commandFailed(cmdRouteAdd, routeVars(route), err)
	}
	return nil
}

func (k *KernelRoutes) Delete(ctx context.Context, route *model.Route) error {
	nr, err := k.build(route)
	if err != nil {
		return err
	}
	log.Debugf("Deleting kernel route [%s]", describeRoute(route))
	if err := k.handle.RouteDel(nr); err != nil {
		if err == unix.ESRCH {
			// already gone
			return nil
		}
		return commandFailed(cmdRouteDel, routeVars(route), err)
	}
	return nil
}

// build converts a registry route into a netlink route.
func (k *KernelRoutes) build(route *model.Route) (*netlink.Route, error) {
	dst, family, err := parseDestination(route)
	if err != nil {
		return nil, err
	}

	nr := &netlink.Route{
		Dst:      dst,
		Family:   family,
		Priority: int(route.Metric),
		Table:    int(route.Table),
		Protocol: unix.RTPROT_STATIC,
		Type:     unix.RTN_UNICAST,
		Scope:    netlink.SCOPE_UNIVERSE,
	}
	if nr.Table == 0 {
		nr.Table = model.MainTable
	}
	if route.Type != "" {
		t, ok := routeTypes[route.Type]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unknown route type '%s'", route.Type)
		}
		nr.Type = t
	}
	if route.Scope != "" {
		s, ok := routeScopes[route.Scope]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unknown route scope '%s'", route.Scope)
		}
		nr.Scope = s
	}
	if route.Gateway != "" {
		gw := net.ParseIP(route.Gateway)
		if gw == nil {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "invalid gateway '%s'", route.Gateway)
		}
		nr.Gw = gw
	}
	if route.Device != "" {
		link, err := k.handle.LinkByName(route.Device)
		if err != nil {
			return nil, errors.NewNotFoundError("interface", route.Device)
		}
		nr.LinkIndex = link.Attrs().Index
	}
	return nr, nil
}

// parseDestination accepts "default", a CIDR, or a bare host address.
func parseDestination(route *model.Route) (*net.IPNet, int, error) {
	if route.IsDefault() {
		if route.IsIPv6() {
			return &net.IPNet{IP: net.IPv6zero, Mask: net.CIDRMask(0, 128)}, netlink.FAMILY_V6, nil
		}
		return &net.IPNet{IP: net.IPv4zero.To4(), Mask: net.CIDRMask(0, 32)}, netlink.FAMILY_V4, nil
	}

	if _, dst, err := net.ParseCIDR(route.Destination); err == nil {
		return dst, familyOf(dst.IP), nil
	}
	if ip := net.ParseIP(route.Destination); ip != nil {
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, familyOf(ip), nil
	}
	return nil, 0, errors.Newf(errors.ErrCodeInvalidParameter, "invalid route destination '%s'", route.Destination)
}

func familyOf(ip net.IP) int {
	if ip.To4() != nil {
		return netlink.FAMILY_V4
	}
	return netlink.FAMILY_V6
}

func routeVars(route *model.Route) vars {
	v := vars{
		"dst":    route.Destination,
		"metric": route.Metric,
		"table":  route.Table,
		"via":    "",
		"dev":    "",
	}
	if route.Table == 0 {
		v["table"] = model.MainTable
	}
	if route.Gateway != "" {
		v["via"] = " via " + route.Gateway
	}
	if route.Device != "" {
		v["dev"] = " dev " + route.Device
	}
	return v
}

func describeRoute(route *model.Route) string {
	return fmt.Sprintf("%s via=%q dev=%q metric=%d table=%d", route.Destination, route.Gateway, route.Device, route.Metric, route.Table)
}
