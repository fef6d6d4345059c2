// Package control is the network control facade: the single entry point the
// RPC surface and the daemon use to read and change devices, connections,
// routes, VPN tunnels, WiFi and DNS.
//
// The facade owns one store per entity kind. A mutation returns what changed
// and the notifier turns that into bus events, so transition logic never
// publishes by itself. Requested state changes are checked against the state
// machines in package state; states observed from the outside world (device
// discovery, supplicant results) are recorded as they are.
//
// Every operation returns errors from package errors. Collaborator failures
// that carry no code are wrapped as SERVICE_ERROR.
package control
