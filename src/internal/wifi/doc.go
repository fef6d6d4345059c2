// Package wifi sequences WiFi operations against the supplicant.
//
// A scan marks the access point cache as scanning, asks the supplicant to
// scan, waits a fixed grace period, then fetches and translates the results
// and replaces the cache. Only one scan runs at a time; a second caller gets
// INVALID_STATE. Connect and disconnect update the current SSID and the
// interface's device state only after the supplicant succeeded.
package wifi
