package model

import (
	"slices"

	"github.com/maksimkurb/netctl/src/internal/state"
)

// DeviceType is the inferred kind of a network interface.
type DeviceType uint32

const (
	DeviceTypeUnknown DeviceType = iota
	DeviceTypeEthernet
	DeviceTypeWiFi
	DeviceTypeLoopback
	DeviceTypeBridge
	DeviceTypeVlan
	DeviceTypeTunTap
	DeviceTypeVeth
	DeviceTypeBond
	DeviceTypeVpn
	DeviceTypeContainer
	DeviceTypePpp
	DeviceTypeBluetooth
)

var deviceTypeNames = map[DeviceType]string{
	DeviceTypeUnknown:   "unknown",
	DeviceTypeEthernet:  "ethernet",
	DeviceTypeWiFi:      "wifi",
	DeviceTypeLoopback:  "loopback",
	DeviceTypeBridge:    "bridge",
	DeviceTypeVlan:      "vlan",
	DeviceTypeTunTap:    "tuntap",
	DeviceTypeVeth:      "veth",
	DeviceTypeBond:      "bond",
	DeviceTypeVpn:       "vpn",
	DeviceTypeContainer: "container",
	DeviceTypePpp:       "ppp",
	DeviceTypeBluetooth: "bluetooth",
}

var deviceTypeAliases = map[string]DeviceType{
	"wireless": DeviceTypeWiFi,
	"tun":      DeviceTypeTunTap,
	"tap":      DeviceTypeTunTap,
}

func (t DeviceType) String() string { return enumName("device-type", deviceTypeNames, t) }

func (t DeviceType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *DeviceType) UnmarshalText(text []byte) error {
	v, err := ParseDeviceType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseDeviceType accepts a type name or its numeric value.
func ParseDeviceType(value string) (DeviceType, error) {
	return parseEnum("device type", deviceTypeNames, deviceTypeAliases, value)
}

// IsVirtual reports whether devices of this type can be deleted. Physical
// devices can only be brought down.
func (t DeviceType) IsVirtual() bool {
	switch t {
	case DeviceTypeVeth, DeviceTypeBridge, DeviceTypeVlan, DeviceTypeTunTap, DeviceTypeBond:
		return true
	}
	return false
}

// DeviceCapabilities are the features inferred for a device.
type DeviceCapabilities struct {
	WiFi        bool   `json:"wifi"`
	AccessPoint bool   `json:"access_point"`
	Vlan        bool   `json:"vlan"`
	Bridge      bool   `json:"bridge"`
	SpeedMbps   uint32 `json:"speed_mbps,omitempty"`
}

// DeviceStats is a counters snapshot.
type DeviceStats struct {
	RxBytes   uint64 `json:"rx_bytes"`
	TxBytes   uint64 `json:"tx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	TxPackets uint64 `json:"tx_packets"`
	RxErrors  uint64 `json:"rx_errors"`
	TxErrors  uint64 `json:"tx_errors"`
	RxDropped uint64 `json:"rx_dropped"`
	TxDropped uint64 `json:"tx_dropped"`
}

// Device is a live network interface. Name is the registry key.
type Device struct {
	Name      string            `json:"name"`
	Type      DeviceType        `json:"type"`
	State     state.DeviceState `json:"state"`
	HwAddress string            `json:"hw_address,omitempty"`
	MTU       uint32            `json:"mtu"`

	// IPv4Address and IPv6Address hold the first address seen of each family, in "ip/prefix" form.
	IPv4Address string   `json:"ipv4_address,omitempty"`
	IPv6Address string   `json:"ipv6_address,omitempty"`
	Addresses   []string `json:"addresses,omitempty"`

	Driver string `json:"driver,omitempty"`
	Vendor string `json:"vendor,omitempty"`
	Model  string `json:"model,omitempty"`
	Bus    string `json:"bus,omitempty"`

	Capabilities DeviceCapabilities `json:"capabilities"`
	Flags        []string           `json:"flags,omitempty"`
	Stats        *DeviceStats       `json:"stats,omitempty"`

	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
}

// DefaultMTU is used when the collaborator does not report one.
const DefaultMTU = 1500

// NewDevice returns a disconnected device with default MTU.
func NewDevice(name string, deviceType DeviceType) *Device {
	return &Device{
		Name:  name,
		Type:  deviceType,
		State: state.DeviceDisconnected,
		MTU:   DefaultMTU,
	}
}

// Clone returns a deep copy so callers never share slices with the store.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	c := *d
	c.Addresses = slices.Clone(d.Addresses)
	c.Flags = slices.Clone(d.Flags)
	c.Children = slices.Clone(d.Children)
	if d.Stats != nil {
		stats := *d.Stats
		c.Stats = &stats
	}
	return &c
}

// HasFlag reports whether the interface carries the given flag, e.g. "UP".
func (d *Device) HasFlag(flag string) bool {
	return slices.Contains(d.Flags, flag)
}
