package model

import "github.com/maksimkurb/netctl/src/internal/state"

// ConnectionType is the kind of network a connection profile configures.
type ConnectionType uint32

const (
	ConnectionTypeUnknown  ConnectionType = 0
	ConnectionTypeEthernet ConnectionType = 1
	ConnectionTypeWiFi     ConnectionType = 2
	ConnectionTypeVpn      ConnectionType = 3
	ConnectionTypeBridge   ConnectionType = 4
	ConnectionTypeBond     ConnectionType = 5
	ConnectionTypeVlan     ConnectionType = 6
	ConnectionTypeLoopback ConnectionType = 7
)

var connectionTypeNames = map[ConnectionType]string{
	ConnectionTypeUnknown:  "unknown",
	ConnectionTypeEthernet: "ethernet",
	ConnectionTypeWiFi:     "wifi",
	ConnectionTypeVpn:      "vpn",
	ConnectionTypeBridge:   "bridge",
	ConnectionTypeBond:     "bond",
	ConnectionTypeVlan:     "vlan",
	ConnectionTypeLoopback: "loopback",
}

var connectionTypeAliases = map[string]ConnectionType{
	"802-3-ethernet":  ConnectionTypeEthernet,
	"802-11-wireless": ConnectionTypeWiFi,
	"wireless":        ConnectionTypeWiFi,
	"wireguard":       ConnectionTypeVpn,
}

func (t ConnectionType) String() string {
	return enumName("connection-type", connectionTypeNames, t)
}

func (t ConnectionType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ConnectionType) UnmarshalText(text []byte) error {
	v, err := ParseConnectionType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseConnectionType accepts a type name, a NetworkManager setting name or the numeric value.
func ParseConnectionType(value string) (ConnectionType, error) {
	return parseEnum("connection type", connectionTypeNames, connectionTypeAliases, value)
}

// Connection is a reusable network profile. ID is a generated UUID and the
// registry key; Name is the human display identifier and need not be unique.
type Connection struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Type        ConnectionType        `json:"type"`
	State       state.ConnectionState `json:"state"`
	Autoconnect bool                  `json:"autoconnect"`
	Device      string                `json:"device,omitempty"`
}

// Clone returns a copy of the connection.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
