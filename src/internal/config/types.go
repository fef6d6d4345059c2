package config

import (
	"path/filepath"
	"time"
)

type Config struct {
	// General holds daemon-wide settings.
	General GeneralConfig `toml:"general" json:"general"`
	// Bus configures the notification bus.
	Bus BusConfig `toml:"bus" json:"bus"`
	// WiFi configures the supplicant collaborator and the scan orchestration.
	WiFi WiFiConfig `toml:"wifi" json:"wifi"`
	// Routing configures how routes reach the kernel.
	Routing RoutingConfig `toml:"routing" json:"routing"`
	// DNS configures the forwarding DNS server.
	DNS DNSConfig `toml:"dns" json:"dns"`
	// VPN configures tunnel backends.
	VPN VPNConfig `toml:"vpn" json:"vpn"`
	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `toml:"metrics" json:"metrics"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// APIListen is the address of the REST API (default: 127.0.0.1:8090). Empty disables the API.
	APIListen string `toml:"api_listen" json:"api_listen" validate:"hostport_or_empty"`
	// LogLevel is one of debug, info, warn, error (default: info).
	LogLevel string `toml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	// DiscoverySchedule is a cron spec for periodic device discovery (default: @every 30s). Empty disables it.
	DiscoverySchedule string `toml:"discovery_schedule" json:"discovery_schedule" validate:"omitempty,cron_spec"`
	// ConnectivitySchedule is a cron spec for periodic connectivity checks (default: @every 1m). Empty disables it.
	ConnectivitySchedule string `toml:"connectivity_schedule" json:"connectivity_schedule" validate:"omitempty,cron_spec"`
	// ConnectivityProbe is the DNS name resolved by the connectivity check (default: example.com.).
	ConnectivityProbe string `toml:"connectivity_probe" json:"connectivity_probe" validate:"omitempty,dns_name"`
	// SysfsRoot is where the classifier reads interface metadata (default: /sys/class/net).
	SysfsRoot string `toml:"sysfs_root" json:"sysfs_root"`
}

type BusConfig struct {
	// SubscriberBuffer is the queue length of every subscriber (default: 64).
	SubscriberBuffer int `toml:"subscriber_buffer" json:"subscriber_buffer" validate:"min=1,max=65536"`
}

type WiFiConfig struct {
	// Interface is used when a WiFi call names none. Empty selects the first WiFi device.
	Interface string `toml:"interface" json:"interface" validate:"omitempty,ifname"`
	// ScanGraceMs is the wait between triggering a scan and reading results (default: 3000).
	ScanGraceMs int `toml:"scan_grace_ms" json:"scan_grace_ms" validate:"min=0,max=60000"`
	// WpaCliPath is the wpa_cli executable (default: wpa_cli).
	WpaCliPath string `toml:"wpa_cli_path" json:"wpa_cli_path" validate:"required"`
}

type RoutingConfig struct {
	// ApplyToKernel installs registered routes with netlink (default: false).
	ApplyToKernel bool `toml:"apply_to_kernel" json:"apply_to_kernel"`
	// Table is the routing table of routes added without one (default: 254).
	Table uint32 `toml:"table" json:"table" validate:"min=1,max=4294967294"`
}

type DNSConfig struct {
	// Autostart starts the DNS server with the daemon (default: false).
	Autostart bool `toml:"autostart" json:"autostart"`
	// ListenAddr is the listen address (default: 127.0.0.1).
	ListenAddr string `toml:"listen_addr" json:"listen_addr" validate:"ip_or_empty"`
	// ListenPort is the listen port (default: 53).
	ListenPort uint16 `toml:"listen_port" json:"listen_port" validate:"required,min=1"`
	// Forwarders are upstream servers, "ip" or "ip:port".
	Forwarders []string `toml:"forwarders" json:"forwarders" validate:"dive,forwarder"`
	// RedirectInterfaces get a port 53 REDIRECT to ListenPort. Empty disables the redirect.
	RedirectInterfaces []string `toml:"redirect_interfaces" json:"redirect_interfaces" validate:"dive,ifname"`
	// TimeoutMs bounds one upstream exchange (default: 2000).
	TimeoutMs int `toml:"timeout_ms" json:"timeout_ms" validate:"min=0,max=60000"`
}

type VPNConfig struct {
	// TorEnabled selects the Tor backend. When false Tor tunnels are NOT_SUPPORTED (default: false).
	TorEnabled bool `toml:"tor_enabled" json:"tor_enabled"`
}

type MetricsConfig struct {
	// Enabled exposes Prometheus metrics on /metrics (default: true).
	Enabled bool `toml:"enabled" json:"enabled"`
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// Path returns the absolute path the config was loaded from.
func (c *Config) Path() string {
	return c._absConfigFilePath
}

func (c *Config) ScanGrace() time.Duration {
	return time.Duration(c.WiFi.ScanGraceMs) * time.Millisecond
}

func (c *Config) DNSTimeout() time.Duration {
	return time.Duration(c.DNS.TimeoutMs) * time.Millisecond
}
