// Package supplicant drives wpa_supplicant through its wpa_cli client.
package supplicant
