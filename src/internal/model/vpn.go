package model

import (
	"slices"

	"github.com/maksimkurb/netctl/src/internal/state"
)

// VpnType is the tunnel protocol.
type VpnType uint32

const (
	VpnTypeUnknown   VpnType = 0
	VpnTypeOpenVpn   VpnType = 1
	VpnTypeWireGuard VpnType = 2
	VpnTypeIPsec     VpnType = 3
	VpnTypeTor       VpnType = 4
)

var vpnTypeNames = map[VpnType]string{
	VpnTypeUnknown:   "unknown",
	VpnTypeOpenVpn:   "openvpn",
	VpnTypeWireGuard: "wireguard",
	VpnTypeIPsec:     "ipsec",
	VpnTypeTor:       "tor",
}

var vpnTypeAliases = map[string]VpnType{
	"arti": VpnTypeTor,
	"wg":   VpnTypeWireGuard,
}

func (t VpnType) String() string { return enumName("vpn-type", vpnTypeNames, t) }

func (t VpnType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *VpnType) UnmarshalText(text []byte) error {
	v, err := ParseVpnType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseVpnType accepts a protocol name or its numeric value.
func ParseVpnType(value string) (VpnType, error) {
	return parseEnum("vpn type", vpnTypeNames, vpnTypeAliases, value)
}

// TorOptions configure the Tor backend.
type TorOptions struct {
	SocksPort     uint16   `json:"socks_port"`
	ExitCountries []string `json:"exit_countries,omitempty"`
}

// VpnTunnel is keyed by Name. Interface names the link the tunnel runs over;
// it defaults to Name.
type VpnTunnel struct {
	Name          string         `json:"name"`
	Type          VpnType        `json:"type"`
	State         state.VpnState `json:"state"`
	LocalIP       string         `json:"local_ip,omitempty"`
	RemoteAddress string         `json:"remote_address,omitempty"`
	Interface     string         `json:"interface,omitempty"`
	Tor           *TorOptions    `json:"tor,omitempty"`
}

// LinkName returns the interface the tunnel is bound to.
func (v *VpnTunnel) LinkName() string {
	if v.Interface != "" {
		return v.Interface
	}
	return v.Name
}

// Clone returns a deep copy of the tunnel.
func (v *VpnTunnel) Clone() *VpnTunnel {
	if v == nil {
		return nil
	}
	cp := *v
	if v.Tor != nil {
		tor := *v.Tor
		tor.ExitCountries = slices.Clone(v.Tor.ExitCountries)
		cp.Tor = &tor
	}
	return &cp
}
