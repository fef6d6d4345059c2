// Package config handles configuration file parsing and validation for netctl.
//
// The daemon reads a TOML file whose sections map onto the components it
// wires: [general], [bus], [wifi], [routing], [dns], [vpn] and [metrics].
// Keys missing from the file keep the values of Default(), so an empty or
// absent file yields a working configuration.
//
// # Example Usage
//
//	cfg, err := config.LoadConfig("/etc/netctl/netctl.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatal(err) // ValidationErrors lists every failing field
//	}
//
// Hasher compares the configuration the daemon started with against the
// file on disk.
package config
