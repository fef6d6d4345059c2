package events

import "time"

// Domain groups events by the RPC domain that emits them.
type Domain string

const (
	DomainDevices     Domain = "Devices"
	DomainConnections Domain = "Connections"
	DomainRouting     Domain = "Routing"
	DomainVPN         Domain = "VPN"
	DomainWiFi        Domain = "WiFi"
	DomainDNS         Domain = "DNS"
	DomainNetwork     Domain = "Network"
)

// Kind names an event.
type Kind string

const (
	DeviceAdded        Kind = "DeviceAdded"
	DeviceRemoved      Kind = "DeviceRemoved"
	DeviceUpdated      Kind = "DeviceUpdated"
	DeviceStateChanged Kind = "DeviceStateChanged"

	ConnectionAdded        Kind = "ConnectionAdded"
	ConnectionRemoved      Kind = "ConnectionRemoved"
	ConnectionUpdated      Kind = "ConnectionUpdated"
	ConnectionStateChanged Kind = "ConnectionStateChanged"
	ConnectionActivated    Kind = "ConnectionActivated"
	ConnectionDeactivated  Kind = "ConnectionDeactivated"

	RouteAdded            Kind = "RouteAdded"
	RouteRemoved          Kind = "RouteRemoved"
	DefaultGatewayChanged Kind = "DefaultGatewayChanged"

	VpnAdded        Kind = "VpnAdded"
	VpnRemoved      Kind = "VpnRemoved"
	VpnStateChanged Kind = "VpnStateChanged"

	ScanStarted    Kind = "ScanStarted"
	ScanCompleted  Kind = "ScanCompleted"
	WiFiConnected  Kind = "Connected"
	WiFiDisconnect Kind = "Disconnected"

	ServerStarted    Kind = "ServerStarted"
	ServerStopped    Kind = "ServerStopped"
	ForwarderAdded   Kind = "ForwarderAdded"
	ForwarderRemoved Kind = "ForwarderRemoved"

	NetworkStateChanged Kind = "NetworkStateChanged"
	ConnectivityChanged Kind = "ConnectivityChanged"
)

// Event is a change notification. Key identifies the entity (device name,
// connection ID, route destination...) and Args carries kind-specific values.
type Event struct {
	Domain Domain         `json:"domain"`
	Kind   Kind           `json:"kind"`
	Key    string         `json:"key,omitempty"`
	Args   map[string]any `json:"args,omitempty"`
	Time   time.Time      `json:"time"`
}

// New builds an event stamped with the current time.
func New(domain Domain, kind Kind, key string, args map[string]any) Event {
	return Event{
		Domain: domain,
		Kind:   kind,
		Key:    key,
		Args:   args,
		Time:   time.Now(),
	}
}
