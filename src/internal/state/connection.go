package state

import "fmt"

// ConnectionState is the activation lifecycle of a connection profile.
// ConnectionNew is the implicit state of a profile that was never activated.
type ConnectionState uint32

const (
	ConnectionNew          ConnectionState = 0
	ConnectionActivating   ConnectionState = 1
	ConnectionActivated    ConnectionState = 2
	ConnectionDeactivating ConnectionState = 3
	ConnectionDeactivated  ConnectionState = 4
)

var connectionStateNames = map[ConnectionState]string{
	ConnectionNew:          "unknown",
	ConnectionActivating:   "activating",
	ConnectionActivated:    "activated",
	ConnectionDeactivating: "deactivating",
	ConnectionDeactivated:  "deactivated",
}

func (s ConnectionState) String() string {
	if name, ok := connectionStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("connection-state(%d)", uint32(s))
}

func (s ConnectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsActive reports whether the connection counts as active.
func (s ConnectionState) IsActive() bool {
	return s == ConnectionActivating || s == ConnectionActivated
}

var connectionTransitions = map[ConnectionState][]ConnectionState{
	ConnectionNew:          {ConnectionActivating},
	ConnectionActivating:   {ConnectionActivating, ConnectionActivated, ConnectionDeactivating, ConnectionDeactivated},
	ConnectionActivated:    {ConnectionActivating, ConnectionDeactivating, ConnectionDeactivated},
	ConnectionDeactivating: {ConnectionActivating, ConnectionDeactivated},
	ConnectionDeactivated:  {ConnectionActivating},
}

// CanTransitionConnection reports whether a connection may move from one state to another.
// Every state may move to Activating; re-activating rebinds the connection to a device.
func CanTransitionConnection(from, to ConnectionState) bool {
	for _, next := range connectionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
