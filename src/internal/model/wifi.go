package model

import "slices"

// WiFiSecurity is the strongest security scheme an access point advertises.
type WiFiSecurity uint32

const (
	WiFiSecurityNone       WiFiSecurity = 0
	WiFiSecurityWep        WiFiSecurity = 1
	WiFiSecurityWpa        WiFiSecurity = 2
	WiFiSecurityWpa2       WiFiSecurity = 3
	WiFiSecurityWpa3       WiFiSecurity = 4
	WiFiSecurityEnterprise WiFiSecurity = 5
)

var wifiSecurityNames = map[WiFiSecurity]string{
	WiFiSecurityNone:       "none",
	WiFiSecurityWep:        "wep",
	WiFiSecurityWpa:        "wpa",
	WiFiSecurityWpa2:       "wpa2",
	WiFiSecurityWpa3:       "wpa3",
	WiFiSecurityEnterprise: "enterprise",
}

func (s WiFiSecurity) String() string { return enumName("wifi-security", wifiSecurityNames, s) }

func (s WiFiSecurity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// WiFiMode is the operating mode of an access point.
type WiFiMode uint32

const (
	WiFiModeUnknown        WiFiMode = 0
	WiFiModeInfrastructure WiFiMode = 1
	WiFiModeAccessPoint    WiFiMode = 2
	WiFiModeAdHoc          WiFiMode = 3
)

var wifiModeNames = map[WiFiMode]string{
	WiFiModeUnknown:        "unknown",
	WiFiModeInfrastructure: "infrastructure",
	WiFiModeAccessPoint:    "ap",
	WiFiModeAdHoc:          "adhoc",
}

func (m WiFiMode) String() string { return enumName("wifi-mode", wifiModeNames, m) }

func (m WiFiMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// AccessPoint is one scan result. Signal is a percentage 0-100.
type AccessPoint struct {
	SSID      string       `json:"ssid"`
	BSSID     string       `json:"bssid"`
	Signal    uint8        `json:"signal"`
	Security  WiFiSecurity `json:"security"`
	Frequency uint32       `json:"frequency"`
	Mode      WiFiMode     `json:"mode"`
}

// AccessPointSnapshot is a consistent view of the scan cache.
type AccessPointSnapshot struct {
	AccessPoints []AccessPoint `json:"access_points"`
	Scanning     bool          `json:"scanning"`
	CurrentSSID  string        `json:"current_ssid,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s AccessPointSnapshot) Clone() AccessPointSnapshot {
	s.AccessPoints = slices.Clone(s.AccessPoints)
	if s.AccessPoints == nil {
		s.AccessPoints = []AccessPoint{}
	}
	return s
}
