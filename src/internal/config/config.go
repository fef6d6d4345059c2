package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultAPIListen            = "127.0.0.1:8090"
	DefaultLogLevel             = "info"
	DefaultDiscoverySchedule    = "@every 30s"
	DefaultConnectivitySchedule = "@every 1m"
	DefaultConnectivityProbe    = "example.com."
	DefaultSysfsRoot            = "/sys/class/net"
	DefaultSubscriberBuffer     = 64
	DefaultScanGraceMs          = 3000
	DefaultWpaCliPath           = "wpa_cli"
	DefaultRoutingTable         = 254
	DefaultDNSListenAddr        = "127.0.0.1"
	DefaultDNSListenPort        = 53
	DefaultDNSTimeoutMs         = 2000
)

// Default returns a configuration with every default filled in.
// Schedules are set here and not in ApplyDefaults so that an explicit
// empty string in the file keeps the job disabled.
func Default() *Config {
	c := &Config{
		General: GeneralConfig{
			APIListen:            DefaultAPIListen,
			DiscoverySchedule:    DefaultDiscoverySchedule,
			ConnectivitySchedule: DefaultConnectivitySchedule,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values that have a non-zero default.
func (c *Config) ApplyDefaults() {
	if c.General.LogLevel == "" {
		c.General.LogLevel = DefaultLogLevel
	}
	if c.General.ConnectivityProbe == "" {
		c.General.ConnectivityProbe = DefaultConnectivityProbe
	}
	if c.General.SysfsRoot == "" {
		c.General.SysfsRoot = DefaultSysfsRoot
	}
	if c.Bus.SubscriberBuffer == 0 {
		c.Bus.SubscriberBuffer = DefaultSubscriberBuffer
	}
	if c.WiFi.ScanGraceMs == 0 {
		c.WiFi.ScanGraceMs = DefaultScanGraceMs
	}
	if c.WiFi.WpaCliPath == "" {
		c.WiFi.WpaCliPath = DefaultWpaCliPath
	}
	if c.Routing.Table == 0 {
		c.Routing.Table = DefaultRoutingTable
	}
	if c.DNS.ListenAddr == "" {
		c.DNS.ListenAddr = DefaultDNSListenAddr
	}
	if c.DNS.ListenPort == 0 {
		c.DNS.ListenPort = DefaultDNSListenPort
	}
	if c.DNS.TimeoutMs == 0 {
		c.DNS.TimeoutMs = DefaultDNSTimeoutMs
	}
}

// LoadConfig reads configPath on top of Default(). A missing file is not an
// error: the defaults are returned and WriteConfig will create the file.
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, errors.NewIOError("failed to get absolute path", err)
		} else {
			configFile = path
		}
	}

	config := Default()
	config._absConfigFilePath = configFile

	content, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		log.Warnf("Configuration file not found: %s, using defaults", configFile)
		return config, nil
	}
	if err != nil {
		return nil, errors.NewIOError("failed to read config file", err)
	}

	if err := toml.Unmarshal(content, config); err != nil {
		var derr *toml.DecodeError
		if stderrors.As(err, &derr) {
			log.Errorf("%s", derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file at line %d, column %d", row, col), err)
		}
		return nil, errors.NewConfigError("failed to parse config file", err)
	}
	config.ApplyDefaults()

	log.Debugf("Configuration file path: %s", configFile)

	return config, nil
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, errors.NewConfigError("failed to serialize config", err)
	}
	return &buf, nil
}

func (c *Config) WriteConfig() error {
	if c._absConfigFilePath == "" {
		return errors.NewConfigError("config has no file path", nil)
	}
	config, err := c.SerializeConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c._absConfigFilePath), 0755); err != nil {
		return errors.NewIOError("failed to create config directory", err)
	}
	if err := os.WriteFile(c._absConfigFilePath, config.Bytes(), 0644); err != nil {
		return errors.NewIOError("failed to write config file", err)
	}
	return nil
}
