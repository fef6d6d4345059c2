package state

import (
	"fmt"
	"strings"
)

// VpnState is the lifecycle of a VPN tunnel.
type VpnState uint32

const (
	VpnUnknown       VpnState = 0
	VpnDisconnected  VpnState = 1
	VpnConnecting    VpnState = 2
	VpnConnected     VpnState = 3
	VpnDisconnecting VpnState = 4
	VpnFailed        VpnState = 5
)

var vpnStateNames = map[VpnState]string{
	VpnUnknown:       "unknown",
	VpnDisconnected:  "disconnected",
	VpnConnecting:    "connecting",
	VpnConnected:     "connected",
	VpnDisconnecting: "disconnecting",
	VpnFailed:        "failed",
}

func (s VpnState) String() string {
	if name, ok := vpnStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("vpn-state(%d)", uint32(s))
}

func (s VpnState) Valid() bool {
	_, ok := vpnStateNames[s]
	return ok
}

func (s VpnState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *VpnState) UnmarshalText(text []byte) error {
	v, err := ParseVpnState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseVpnState accepts a state name (case-insensitive) or its numeric value.
func ParseVpnState(value string) (VpnState, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for st, name := range vpnStateNames {
		if name == value {
			return st, nil
		}
	}
	var n uint32
	if _, err := fmt.Sscanf(value, "%d", &n); err == nil && VpnState(n).Valid() {
		return VpnState(n), nil
	}
	return VpnUnknown, fmt.Errorf("unknown vpn state %q", value)
}

var vpnTransitions = map[VpnState][]VpnState{
	VpnUnknown:       {VpnDisconnected, VpnConnecting, VpnConnected, VpnFailed},
	VpnDisconnected:  {VpnConnecting},
	VpnConnecting:    {VpnConnected, VpnDisconnecting, VpnDisconnected, VpnFailed},
	VpnConnected:     {VpnDisconnecting, VpnDisconnected, VpnFailed},
	VpnDisconnecting: {VpnDisconnected, VpnFailed},
	VpnFailed:        {VpnConnecting, VpnDisconnected},
}

// CanTransitionVpn reports whether a tunnel may move from one state to another.
// Staying in the same state is always legal.
func CanTransitionVpn(from, to VpnState) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range vpnTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
