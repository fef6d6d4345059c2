package state

import (
	"fmt"
	"strings"
)

// DeviceState is the NetworkManager-compatible lifecycle of a device. Values
// leave room for intermediate states; higher means further progressed.
type DeviceState uint32

const (
	DeviceUnknown      DeviceState = 0
	DeviceUnmanaged    DeviceState = 10
	DeviceUnavailable  DeviceState = 20
	DeviceDisconnected DeviceState = 30
	DevicePreparing    DeviceState = 40
	DeviceConfiguring  DeviceState = 50
	DeviceNeedAuth     DeviceState = 60
	DeviceIPConfig     DeviceState = 70
	DeviceIPCheck      DeviceState = 80
	DeviceSecondaries  DeviceState = 90
	DeviceActivated    DeviceState = 100
	DeviceDeactivating DeviceState = 110
	DeviceFailed       DeviceState = 120
)

var deviceStateNames = map[DeviceState]string{
	DeviceUnknown:      "unknown",
	DeviceUnmanaged:    "unmanaged",
	DeviceUnavailable:  "unavailable",
	DeviceDisconnected: "disconnected",
	DevicePreparing:    "preparing",
	DeviceConfiguring:  "configuring",
	DeviceNeedAuth:     "need-auth",
	DeviceIPConfig:     "ip-config",
	DeviceIPCheck:      "ip-check",
	DeviceSecondaries:  "secondaries",
	DeviceActivated:    "activated",
	DeviceDeactivating: "deactivating",
	DeviceFailed:       "failed",
}

func (s DeviceState) String() string {
	if name, ok := deviceStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("device-state(%d)", uint32(s))
}

// Valid reports whether s is one of the defined states.
func (s DeviceState) Valid() bool {
	_, ok := deviceStateNames[s]
	return ok
}

// IsActivating reports whether s is one of the steps between Preparing and Secondaries.
func (s DeviceState) IsActivating() bool {
	return s >= DevicePreparing && s <= DeviceSecondaries
}

// IsDown reports whether a device in s cannot carry an active connection.
func (s DeviceState) IsDown() bool {
	switch s {
	case DeviceUnmanaged, DeviceUnavailable, DeviceDisconnected, DeviceFailed:
		return true
	}
	return false
}

// MarshalText encodes the state by name.
func (s DeviceState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts a state name or its numeric value.
func (s *DeviceState) UnmarshalText(text []byte) error {
	v, err := ParseDeviceState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseDeviceState accepts a state name (case-insensitive) or its numeric value.
func ParseDeviceState(value string) (DeviceState, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for st, name := range deviceStateNames {
		if name == value || strings.ReplaceAll(name, "-", "") == value {
			return st, nil
		}
	}
	var n uint32
	if _, err := fmt.Sscanf(value, "%d", &n); err == nil && DeviceState(n).Valid() {
		return DeviceState(n), nil
	}
	return DeviceUnknown, fmt.Errorf("unknown device state %q", value)
}

// activation steps may fall back to Disconnected, fail, or be torn down.
var activationExits = []DeviceState{DeviceDeactivating, DeviceFailed, DeviceDisconnected}

var deviceTransitions = map[DeviceState][]DeviceState{
	DeviceUnmanaged:    {DeviceUnavailable, DeviceDisconnected},
	DeviceUnavailable:  {DeviceUnmanaged, DeviceDisconnected},
	DeviceDisconnected: {DeviceUnmanaged, DeviceUnavailable, DevicePreparing, DeviceActivated},
	DevicePreparing:    append([]DeviceState{DeviceConfiguring, DeviceNeedAuth, DeviceIPConfig}, activationExits...),
	DeviceConfiguring:  append([]DeviceState{DeviceNeedAuth, DeviceIPConfig}, activationExits...),
	DeviceNeedAuth:     append([]DeviceState{DeviceConfiguring, DeviceIPConfig}, activationExits...),
	DeviceIPConfig:     append([]DeviceState{DeviceIPCheck, DeviceActivated}, activationExits...),
	DeviceIPCheck:      append([]DeviceState{DeviceSecondaries, DeviceActivated}, activationExits...),
	DeviceSecondaries:  append([]DeviceState{DeviceActivated}, activationExits...),
	DeviceActivated:    {DeviceDeactivating, DeviceFailed, DeviceDisconnected},
	DeviceDeactivating: {DeviceDisconnected, DeviceFailed},
	// Failed is terminal until the device is prepared again.
	DeviceFailed: {DeviceDisconnected, DevicePreparing},
}

// CanTransitionDevice reports whether a requested change from one state to
// another is legal. Staying in the same state is always legal, Unknown may go
// anywhere, and any state may drop to Unmanaged or Unavailable when the
// device is released or loses its carrier.
func CanTransitionDevice(from, to DeviceState) bool {
	if !to.Valid() {
		return false
	}
	if from == to || from == DeviceUnknown {
		return true
	}
	if to == DeviceUnmanaged || to == DeviceUnavailable {
		return true
	}
	for _, next := range deviceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
