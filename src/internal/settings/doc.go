// Package settings converts loosely typed settings bags received over the
// RPC surface into typed structs.
//
// Every key of a bag must be known. Conversion collects all problems before
// failing, and the returned error is INVALID_PARAMETER with a
// ValidationErrors cause listing each rejected key. Nothing is mutated by
// this package, so callers validate before touching any store.
//
// Connection bags:
//
//	id           display name, required
//	type         connection type name ("ethernet", "802-11-wireless", ...) or number, required
//	autoconnect  bool, default true
//	interface    interface name the profile is bound to
//
// VPN bags:
//
//	name            tunnel name, required
//	type            "wireguard", "openvpn", "ipsec", "tor" (alias "arti") or number
//	local_ip        IP address
//	remote_address  IP or hostname, optionally with a port
//	interface       link the tunnel runs over, defaults to name
//	tor             table with socks_port (default 9050) and exit_countries
package settings
