package registry

import (
	"sync"

	"fleethub/internal/twin"
)

// ─────────────────────────── in-memory registry (fallback) ───────────────────────────

// MemRegistry is a process-local registry used when no external registry is
// configured, and by tests. It mimics the registry's version bumping.
type MemRegistry struct {
	mu      sync.RWMutex
	twins   map[string]*twin.Twin
	modules map[string]*twin.Modules
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{
		twins:   make(map[string]*twin.Twin),
		modules: make(map[string]*twin.Modules),
	}
}

func (m *MemRegistry) GetTwin(deviceID string) (*twin.Twin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.twins[deviceID]
	if !ok {
		return nil, ErrTwinNotFound
	}
	return t.Clone(), nil
}

func (m *MemRegistry) GetModulesTwin(deviceID string) (*twin.Modules, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mods, ok := m.modules[deviceID]
	if !ok {
		return nil, ErrTwinNotFound
	}
	return mods, nil
}

func (m *MemRegistry) UpdateTwin(deviceID string, t *twin.Twin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := t.Clone()
	next.DeviceID = deviceID
	if prev, ok := m.twins[deviceID]; ok {
		next.Version = prev.Version + 1
	} else {
		next.Version = 1
	}
	m.twins[deviceID] = next
	return nil
}

func (m *MemRegistry) DeleteTwin(deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.twins, deviceID)
	delete(m.modules, deviceID)
	return nil
}

// SetModulesTwin seeds the module snapshot; the edge runtime reports it in
// a real deployment.
func (m *MemRegistry) SetModulesTwin(deviceID string, mods *twin.Modules) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules[deviceID] = mods
}
