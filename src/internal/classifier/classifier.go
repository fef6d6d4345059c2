package classifier

import (
	"strings"

	"github.com/maksimkurb/netctl/src/internal/model"
)

// ContainerVethMinLength is the name length from which a veth-prefixed
// interface is treated as a container endpoint instead of a plain veth pair.
// Container runtimes name host-side endpoints with a long random suffix
// ("veth" + 7 or more hex characters).
const ContainerVethMinLength = 11

// wifiDriverHints are driver name substrings that mark an "eth"/"en" named
// interface as wireless.
var wifiDriverHints = []string{"wifi", "wl", "ath", "iwl"}

// Result is the outcome of classifying one interface.
type Result struct {
	Type         model.DeviceType
	Capabilities model.DeviceCapabilities
}

// Classify maps an interface name to a device type and capability set.
// probe may be nil, in which case every probe-based rule sees "no data".
// The result depends only on the name and the probe's answers.
func Classify(name string, probe Probe) Result {
	if probe == nil {
		probe = nopProbe{}
	}
	t := classifyType(name, probe)
	return Result{
		Type:         t,
		Capabilities: capabilities(name, t, probe),
	}
}

// ClassifyType returns only the device type.
func ClassifyType(name string, probe Probe) model.DeviceType {
	if probe == nil {
		probe = nopProbe{}
	}
	return classifyType(name, probe)
}

func classifyType(name string, probe Probe) model.DeviceType {
	switch {
	case name == "lo":
		return model.DeviceTypeLoopback
	case hasAnyPrefix(name, "wlan", "wlp"):
		return model.DeviceTypeWiFi
	case hasAnyPrefix(name, "eth", "en", "eno"):
		if driver, ok := probe.Driver(name); ok && isWiFiDriver(driver) {
			return model.DeviceTypeWiFi
		}
		return model.DeviceTypeEthernet
	case hasAnyPrefix(name, "br-", "bridge"):
		return model.DeviceTypeBridge
	case strings.HasPrefix(name, "vlan"):
		return model.DeviceTypeVlan
	case hasAnyPrefix(name, "tun", "tap"):
		return model.DeviceTypeTunTap
	case strings.HasPrefix(name, "veth"):
		if IsContainerVeth(name) {
			return model.DeviceTypeContainer
		}
		return model.DeviceTypeVeth
	case strings.HasPrefix(name, "bond"):
		return model.DeviceTypeBond
	case strings.HasPrefix(name, "docker"):
		return model.DeviceTypeContainer
	case strings.HasPrefix(name, "ppp"):
		return model.DeviceTypePpp
	case strings.HasPrefix(name, "wg"):
		return model.DeviceTypeVpn
	case probe.IsWireless(name):
		return model.DeviceTypeWiFi
	}
	return model.DeviceTypeUnknown
}

// IsContainerVeth reports whether a veth-prefixed name is long enough to be a
// container endpoint.
func IsContainerVeth(name string) bool {
	return strings.HasPrefix(name, "veth") && len(name) >= ContainerVethMinLength
}

func capabilities(name string, t model.DeviceType, probe Probe) model.DeviceCapabilities {
	var caps model.DeviceCapabilities
	switch t {
	case model.DeviceTypeWiFi:
		caps.WiFi = true
		caps.AccessPoint = probe.SupportsAccessPoint(name)
	case model.DeviceTypeEthernet:
		caps.Vlan = true
		caps.Bridge = true
		if speed, ok := probe.Speed(name); ok {
			caps.SpeedMbps = speed
		}
	case model.DeviceTypeBridge:
		caps.Bridge = true
	}
	return caps
}

func isWiFiDriver(driver string) bool {
	driver = strings.ToLower(driver)
	for _, hint := range wifiDriverHints {
		if strings.Contains(driver, hint) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(name string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
