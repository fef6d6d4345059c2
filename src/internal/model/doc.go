// Package model defines the entities netctl keeps in memory: devices,
// connection profiles, routes, VPN tunnels and WiFi access points.
//
// Entities are plain structs with JSON tags. Every pointer-carrying entity has
// a Clone method; stores hand out clones so callers can never mutate registry
// state in place.
package model
