package ingest

import (
	"encoding/json"
	"time"
)

// System property names stamped on every inbound event by the transport.
const (
	SysAuthMethod = "auth-method"
	SysDeviceID   = "connection-device-id"
)

// Scope values carried inside the auth-method property.
const ScopeDevice = "device"

// Event is one inbound telemetry event as delivered by the event stream
// source: system properties, transport identity, and a JSON-encoded body.
type Event struct {
	SequenceNumber   string
	EnqueuedAt       time.Time
	SystemProperties map[string]string
	Body             []byte
}

// authMethod is the JSON shape of the auth-method system property.
type authMethod struct {
	Scope string `json:"scope"`
	Type  string `json:"type"`
}

// parseAuthMethod decodes the auth-method property; a missing or undecodable
// property means the event is malformed.
func parseAuthMethod(raw string) (authMethod, bool) {
	var m authMethod
	if raw == "" || json.Unmarshal([]byte(raw), &m) != nil {
		return authMethod{}, false
	}
	return m, true
}
