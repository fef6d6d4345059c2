// Package state holds the lifecycle enumerations of netctl entities and their
// transition tables.
//
// Everything here is pure: no I/O, no locking. Stores and the control facade
// consult these tables before recording a requested state change. States
// observed from the outside world (discovery, supplicant results) are recorded
// as they are, since they describe what already happened.
package state
