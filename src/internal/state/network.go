package state

import "fmt"

// NetworkState is the aggregate connectivity progress of the host.
type NetworkState uint32

const (
	NetworkUnknown         NetworkState = 0
	NetworkInitializing    NetworkState = 10
	NetworkDisconnected    NetworkState = 20
	NetworkConnecting      NetworkState = 30
	NetworkConnectedLocal  NetworkState = 40
	NetworkConnectedSite   NetworkState = 50
	NetworkConnectedGlobal NetworkState = 60
)

var networkStateNames = map[NetworkState]string{
	NetworkUnknown:         "unknown",
	NetworkInitializing:    "initializing",
	NetworkDisconnected:    "disconnected",
	NetworkConnecting:      "connecting",
	NetworkConnectedLocal:  "connected-local",
	NetworkConnectedSite:   "connected-site",
	NetworkConnectedGlobal: "connected-global",
}

func (s NetworkState) String() string {
	if name, ok := networkStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("network-state(%d)", uint32(s))
}

func (s NetworkState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Connectivity is a classification of reachability, not a progress scale.
type Connectivity uint32

const (
	ConnectivityUnknown Connectivity = 0
	ConnectivityNone    Connectivity = 1
	ConnectivityLimited Connectivity = 2
	ConnectivityPortal  Connectivity = 3
	ConnectivityFull    Connectivity = 4
)

var connectivityNames = map[Connectivity]string{
	ConnectivityUnknown: "unknown",
	ConnectivityNone:    "none",
	ConnectivityLimited: "limited",
	ConnectivityPortal:  "portal",
	ConnectivityFull:    "full",
}

func (c Connectivity) String() string {
	if name, ok := connectivityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("connectivity(%d)", uint32(c))
}

func (c Connectivity) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// DeviceSample is the part of a device that network-state derivation looks at.
type DeviceSample struct {
	State    DeviceState
	Loopback bool
}

// DeriveNetworkState computes the aggregate network state. discovered is false
// until the first discovery pass has completed.
func DeriveNetworkState(devices []DeviceSample, connectivity Connectivity, discovered bool) NetworkState {
	activated, activating := false, false
	for _, d := range devices {
		if d.Loopback {
			continue
		}
		switch {
		case d.State == DeviceActivated:
			activated = true
		case d.State.IsActivating():
			activating = true
		}
	}

	switch {
	case activated:
		switch connectivity {
		case ConnectivityFull:
			return NetworkConnectedGlobal
		case ConnectivityLimited, ConnectivityPortal:
			return NetworkConnectedSite
		default:
			return NetworkConnectedLocal
		}
	case activating:
		return NetworkConnecting
	case !discovered:
		return NetworkInitializing
	default:
		return NetworkDisconnected
	}
}
