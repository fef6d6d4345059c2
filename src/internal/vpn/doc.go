// Package vpn provides the tunnel backends behind connect_vpn and
// disconnect_vpn. Backend presence is decided once, at construction: a type
// without a usable backend is served by UnsupportedBackend.
package vpn
