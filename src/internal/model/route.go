package model

import "strings"

// DefaultDestination is the registry key of the default route.
const DefaultDestination = "default"

// RouteType mirrors the kernel route types that netctl manages.
type RouteType string

const (
	RouteTypeUnicast     RouteType = "unicast"
	RouteTypeLocal       RouteType = "local"
	RouteTypeBroadcast   RouteType = "broadcast"
	RouteTypeMulticast   RouteType = "multicast"
	RouteTypeBlackhole   RouteType = "blackhole"
	RouteTypeUnreachable RouteType = "unreachable"
	RouteTypeProhibit    RouteType = "prohibit"
)

// RouteScope mirrors the kernel route scopes.
type RouteScope string

const (
	RouteScopeUniverse RouteScope = "universe"
	RouteScopeSite     RouteScope = "site"
	RouteScopeLink     RouteScope = "link"
	RouteScopeHost     RouteScope = "host"
	RouteScopeNowhere  RouteScope = "nowhere"
)

// MainTable is the kernel's main routing table id.
const MainTable = 254

// Route is keyed by Destination ("default" or a CIDR). Empty Gateway and
// Device mean absent.
type Route struct {
	Destination string     `json:"destination"`
	Gateway     string     `json:"gateway,omitempty"`
	Device      string     `json:"device,omitempty"`
	Metric      uint32     `json:"metric"`
	Type        RouteType  `json:"type"`
	Table       uint32     `json:"table"`
	Scope       RouteScope `json:"scope"`
}

// IsDefault reports whether r is the default route.
func (r *Route) IsDefault() bool {
	return r.Destination == DefaultDestination
}

// IsIPv6 reports whether the route belongs to the IPv6 family, judged by its
// gateway or destination.
func (r *Route) IsIPv6() bool {
	if r.Gateway != "" {
		return IsIPv6Address(r.Gateway)
	}
	return IsIPv6Address(r.Destination)
}

// IsIPv6Address selects the address family the same way gateway tracking
// does: presence of ':' means IPv6.
func IsIPv6Address(addr string) bool {
	return strings.Contains(addr, ":")
}

// Clone returns a copy of the route.
func (r *Route) Clone() *Route {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// DefaultGateways holds the current default gateway per address family.
type DefaultGateways struct {
	IPv4 string `json:"gateway"`
	IPv6 string `json:"gateway6"`
}
