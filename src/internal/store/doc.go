// Package store implements the in-memory entity registries of netctl.
//
// There is one store per entity kind (devices, connections, routes, VPN
// tunnels, access points) and each store owns its own lock, so operations on
// unrelated kinds never block each other. Reads take a shared lock and return
// deep copies captured under a single lock acquisition; listing order is
// registration order, which makes "first match wins" lookups deterministic.
//
// Mutations return a Change describing what happened. Stores never publish
// notifications themselves; the control layer turns changes into events.
// Nothing here performs I/O, so locks are never held across external calls.
package store
