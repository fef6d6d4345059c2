package config

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestValidateConfig_Defaults(t *testing.T) {
	if err := Default().ValidateConfig(); err != nil {
		t.Errorf("Expected defaults to validate, got: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"unknown log level", func(c *Config) { c.General.LogLevel = "trace" }, "general.log_level"},
		{"api listen without port", func(c *Config) { c.General.APIListen = "localhost" }, "general.api_listen"},
		{"api listen bad port", func(c *Config) { c.General.APIListen = "localhost:99999" }, "general.api_listen"},
		{"bad discovery schedule", func(c *Config) { c.General.DiscoverySchedule = "every day" }, "general.discovery_schedule"},
		{"bad probe name", func(c *Config) { c.General.ConnectivityProbe = "bad..name" }, "general.connectivity_probe"},
		{"zero subscriber buffer", func(c *Config) { c.Bus.SubscriberBuffer = 0 }, "bus.subscriber_buffer"},
		{"bad wifi interface", func(c *Config) { c.WiFi.Interface = "wl/0" }, "wifi.interface"},
		{"empty wpa_cli path", func(c *Config) { c.WiFi.WpaCliPath = "" }, "wifi.wpa_cli_path"},
		{"bracketed listen address", func(c *Config) { c.DNS.ListenAddr = "[::1]" }, "dns.listen_addr"},
		{"bad forwarder", func(c *Config) { c.DNS.Forwarders = []string{"1.1.1.1", "nonsense"} }, "dns.forwarders"},
		{"redirect to port 53", func(c *Config) { c.DNS.RedirectInterfaces = []string{"br0"} }, "dns.redirect_interfaces"},
		{"duplicate forwarder", func(c *Config) { c.DNS.Forwarders = []string{"1.1.1.1", "1.1.1.1"} }, "dns.forwarders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.ValidateConfig()
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			var verrs ValidationErrors
			if !stderrors.As(err, &verrs) {
				t.Fatalf("Expected ValidationErrors, got %T", err)
			}
			found := false
			for _, e := range verrs {
				if strings.HasPrefix(e.FieldPath, tt.wantField) {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected an error on %s, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"ipv6 listen address", func(c *Config) { c.DNS.ListenAddr = "::1" }},
		{"api disabled", func(c *Config) { c.General.APIListen = "" }},
		{"schedules disabled", func(c *Config) {
			c.General.DiscoverySchedule = ""
			c.General.ConnectivitySchedule = ""
		}},
		{"standard cron spec", func(c *Config) { c.General.DiscoverySchedule = "*/5 * * * *" }},
		{"redirect with another port", func(c *Config) {
			c.DNS.ListenPort = 5353
			c.DNS.RedirectInterfaces = []string{"br0", "wlan0"}
		}},
		{"forwarders with ports", func(c *Config) { c.DNS.Forwarders = []string{"1.1.1.1", "[2606:4700::1111]:53"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.ValidateConfig(); err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{FieldPath: "dns.listen_port", Message: "field is required"},
		{ItemName: "1.1.1.1", FieldPath: "dns.forwarders.1", Message: "duplicate forwarder: 1.1.1.1"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "2 error(s)") {
		t.Errorf("expected error count in %q", msg)
	}
	if !strings.Contains(msg, "[1.1.1.1] dns.forwarders.1") {
		t.Errorf("expected item name in %q", msg)
	}
	if (ValidationErrors{}).Error() != "no validation errors" {
		t.Error("unexpected message for empty errors")
	}
}
