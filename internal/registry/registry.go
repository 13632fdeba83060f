// Package registry declares the contract of the external device registry.
// The registry owns the twin snapshots; it performs its own network retries
// and bumps the twin version on every mutation. Implementations live with
// the deployment, not here.
package registry

import (
	"errors"

	"fleethub/internal/twin"
)

var ErrTwinNotFound = errors.New("twin not found in registry")

type Client interface {
	// GetTwin returns the point-in-time snapshot for the device, or
	// ErrTwinNotFound.
	GetTwin(deviceID string) (*twin.Twin, error)

	// GetModulesTwin returns the edge runtime's module snapshot.
	GetModulesTwin(deviceID string) (*twin.Modules, error)

	// UpdateTwin pushes tag/desired mutations back to the registry.
	UpdateTwin(deviceID string, t *twin.Twin) error

	// DeleteTwin removes the device from the registry; deleting an absent
	// twin is not an error.
	DeleteTwin(deviceID string) error
}
