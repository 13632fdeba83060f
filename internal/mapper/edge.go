package mapper

import (
	"fleethub/internal/models"
	"fleethub/internal/twin"
)

// EdgeMapper maps IoT edge devices. Details need a second input: the edge
// runtime's module twin, from which the connected-client and module counts
// are computed. It therefore carries a wider CreateDetails than the shared
// contract; list items and write-back follow the common shape.
type EdgeMapper struct{}

// CreateDetails builds the edge detail from the device twin, the runtime
// module snapshot, and the label sets of the device and its model. Labels
// from the two sources are collapsed into a set union.
func (EdgeMapper) CreateDetails(t *twin.Twin, mods *twin.Modules, deviceLabels, modelLabels []models.Label, extraTags []string) (models.EdgeDeviceDetails, error) {
	if t == nil {
		return models.EdgeDeviceDetails{}, ErrNilSnapshot
	}
	if t.DeviceID == "" {
		return models.EdgeDeviceDetails{}, ErrMissingDeviceID
	}
	modelID := t.Tag(twin.TagModelID)
	if modelID == nil || *modelID == "" {
		return models.EdgeDeviceDetails{}, ErrMissingModelID
	}

	modules := edgeModules(mods)

	return models.EdgeDeviceDetails{
		DeviceID:        t.DeviceID,
		ModelID:         *modelID,
		Name:            deref(t.Tag(twin.TagDeviceName)),
		ConnectionState: t.ConnectionState,
		Scope:           t.DeviceScope,
		IsEnabled:       t.IsEnabled(),
		NbDevices:       connectedClients(mods),
		NbModules:       len(modules),
		Modules:         modules,
		Tags:            collectTags(t, extraTags),
		Labels:          MergeLabels(deviceLabels, modelLabels),
	}, nil
}

func (EdgeMapper) CreateListItem(t *twin.Twin) models.DeviceListItem {
	return DeviceMapper{}.CreateListItem(t)
}

func (EdgeMapper) ApplyToSnapshot(t *twin.Twin, d models.EdgeDeviceDetails) {
	t.SetTag(twin.TagDeviceName, d.Name)
	t.SetTag(twin.TagModelID, d.ModelID)
	for key, value := range d.Tags {
		t.SetTag(key, value)
	}
}

// connectedClients reads the leaf-device count the runtime reports. Missing
// or malformed counts degrade to 0.
func connectedClients(mods *twin.Modules) int {
	if mods == nil || mods.Reported == nil {
		return 0
	}
	switch v := mods.Reported[twin.ReportedConnectedClients].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// edgeModules decodes the reported module map into the domain shape. Each
// entry is keyed by module name with a bag of runtime attributes.
func edgeModules(mods *twin.Modules) []models.EdgeModule {
	if mods == nil || mods.Reported == nil {
		return nil
	}
	raw, ok := mods.Reported[twin.ReportedModules].(map[string]any)
	if !ok {
		return nil
	}
	out := make([]models.EdgeModule, 0, len(raw))
	for name, attrs := range raw {
		m := models.EdgeModule{Name: name}
		if bag, ok := attrs.(map[string]any); ok {
			if v, ok := bag["version"].(string); ok {
				m.Version = v
			}
			if v, ok := bag["runtimeStatus"].(string); ok {
				m.Status = v
			}
		}
		out = append(out, m)
	}
	return out
}
