// Package domain defines the collaborator contracts the netctl core depends on.
//
// Concrete implementations live in networking (netlink), supplicant (wpa_cli),
// dnsserver and vpn; tests use the hand-written mocks in internal/mocks.
package domain

import (
	"context"
	"strconv"

	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
)

// Address is an interface address with its prefix length.
type Address struct {
	IP        string `json:"ip"`
	PrefixLen int    `json:"prefix_len"`
}

// String formats the address as "ip/prefix".
func (a Address) String() string {
	return a.IP + "/" + strconv.Itoa(a.PrefixLen)
}

// InterfaceInfo is what the interface collaborator reports about one link.
type InterfaceInfo struct {
	Name      string
	Index     int
	Kind      string
	HwAddress string
	MTU       uint32
	// OperState is the kernel operational state ("up", "down", "unknown"...).
	OperState string
	Addresses []Address
	Flags     []string
	Stats     *model.DeviceStats
	// Parent is the lower device of stacked links (VLAN over ethernet).
	Parent string
	// Master is the bridge or bond the link is enslaved to.
	Master string
}

// InterfaceController lists links and mutates them. Mutations fail with
// COMMAND_FAILED carrying the equivalent command and the kernel error.
type InterfaceController interface {
	ListInterfaceNames(ctx context.Context) ([]string, error)
	GetInterfaceInfo(ctx context.Context, name string) (*InterfaceInfo, error)

	SetUp(ctx context.Context, name string) error
	SetDown(ctx context.Context, name string) error
	SetMTU(ctx context.Context, name string, mtu uint32) error
	SetMAC(ctx context.Context, name string, mac string) error
	AddIP(ctx context.Context, name string, ip string, prefixLen int) error
	DelIP(ctx context.Context, name string, ip string, prefixLen int) error
	DeleteDevice(ctx context.Context, name string) error
}

// SupplicantSecurity is the key management advertised in a scan result.
type SupplicantSecurity string

const (
	SecurityOpen    SupplicantSecurity = "open"
	SecurityWEP     SupplicantSecurity = "wep"
	SecurityWPAPSK  SupplicantSecurity = "wpa-psk"
	SecurityWPA2PSK SupplicantSecurity = "wpa2-psk"
	SecurityWPA3SAE SupplicantSecurity = "wpa3-sae"
	SecurityEAP     SupplicantSecurity = "eap"
)

// ScanResult is one BSS as reported by the supplicant.
type ScanResult struct {
	SSID          string
	BSSID         string
	Frequency     uint32
	SignalPercent uint8
	Security      SupplicantSecurity
}

// SupplicantStatus is the association state of an interface.
type SupplicantStatus struct {
	// State is the wpa_state value, e.g. "COMPLETED" or "DISCONNECTED".
	State string
	SSID  string
	BSSID string
}

// SupplicantStateCompleted is the wpa_state of an associated and authenticated interface.
const SupplicantStateCompleted = "COMPLETED"

// ConfiguredNetwork is an entry of the supplicant's network list.
type ConfiguredNetwork struct {
	ID    int    `json:"id"`
	SSID  string `json:"ssid"`
	BSSID string `json:"bssid,omitempty"`
	Flags string `json:"flags,omitempty"`
}

// Supplicant drives the WiFi supplicant of one or more interfaces.
type Supplicant interface {
	Scan(ctx context.Context, iface string) error
	ScanResults(ctx context.Context, iface string) ([]ScanResult, error)
	// Connect associates with ssid. An empty password selects an open network.
	Connect(ctx context.Context, iface, ssid, password string) error
	Disconnect(ctx context.Context, iface string) error
	Status(ctx context.Context, iface string) (*SupplicantStatus, error)
	// SignalPoll returns the current RSSI in dBm.
	SignalPoll(ctx context.Context, iface string) (int32, error)
	IsRunning(ctx context.Context, iface string) bool
	IsInstalled() bool
	ListNetworks(ctx context.Context, iface string) ([]ConfiguredNetwork, error)
	RemoveNetwork(ctx context.Context, iface string, id int) error
}

// RouteBackend applies registry routes to the kernel.
type RouteBackend interface {
	Replace(ctx context.Context, route *model.Route) error
	Delete(ctx context.Context, route *model.Route) error
}

// VpnBackend brings a tunnel up or down. Implementations that are not
// available return NOT_SUPPORTED.
type VpnBackend interface {
	Connect(ctx context.Context, tunnel *model.VpnTunnel) error
	Disconnect(ctx context.Context, tunnel *model.VpnTunnel) error
}

// ConnectivityChecker classifies reachability of the outside world.
type ConnectivityChecker interface {
	Check(ctx context.Context) (state.Connectivity, error)
}

// NoopRouteBackend keeps routes in the registry only.
type NoopRouteBackend struct{}

func (NoopRouteBackend) Replace(context.Context, *model.Route) error { return nil }
func (NoopRouteBackend) Delete(context.Context, *model.Route) error  { return nil }
