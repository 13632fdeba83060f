package twin

import "time"

// Connection and status values reported by the external registry.
const (
	StateConnected    = "Connected"
	StateDisconnected = "Disconnected"

	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// Twin is a point-in-time snapshot of a device in the external registry:
// three string-keyed property bags plus the registry-owned scalar state.
// Values in the bags are untyped; the wire commonly carries strings but
// numbers and booleans arrive as their native JSON type.
type Twin struct {
	DeviceID        string
	ConnectionState string
	Status          string
	StatusUpdatedAt time.Time
	DeviceScope     string
	Version         int64

	Tags     map[string]any
	Desired  map[string]any
	Reported map[string]any
}

// IsConnected derives the connectivity flag from the registry state.
func (t *Twin) IsConnected() bool {
	return t != nil && t.ConnectionState == StateConnected
}

// IsEnabled derives the enabled flag from the registry status.
func (t *Twin) IsEnabled() bool {
	return t != nil && t.Status == StatusEnabled
}

// Modules is the secondary snapshot an edge device exposes: the reported
// state of its runtime, including the module list and connected clients.
type Modules struct {
	Reported map[string]any
}
