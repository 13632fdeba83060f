package mapper

import (
	"fleethub/internal/models"
	"fleethub/internal/twin"
)

// DeviceMapper maps generic (non-LoRa) devices. It owns the identity tags
// (deviceName, modelId) plus the tenant tag dictionary; it never touches
// desired or reported properties.
type DeviceMapper struct{}

var _ Mapper[models.DeviceDetails, models.DeviceListItem] = DeviceMapper{}

func (DeviceMapper) CreateDetails(t *twin.Twin, extraTags []string) (models.DeviceDetails, error) {
	if t == nil {
		return models.DeviceDetails{}, ErrNilSnapshot
	}
	if t.DeviceID == "" {
		return models.DeviceDetails{}, ErrMissingDeviceID
	}
	modelID := t.Tag(twin.TagModelID)
	if modelID == nil || *modelID == "" {
		return models.DeviceDetails{}, ErrMissingModelID
	}

	return models.DeviceDetails{
		DeviceID:        t.DeviceID,
		ModelID:         *modelID,
		Name:            deref(t.Tag(twin.TagDeviceName)),
		IsConnected:     t.IsConnected(),
		IsEnabled:       t.IsEnabled(),
		StatusUpdatedAt: t.StatusUpdatedAt,
		Version:         t.Version,
		Tags:            collectTags(t, extraTags),
	}, nil
}

func (DeviceMapper) CreateListItem(t *twin.Twin) models.DeviceListItem {
	supportsLoRa := false
	if v := t.Tag(twin.TagSupportLoRa); v != nil {
		supportsLoRa = *v == "true"
	}
	return models.DeviceListItem{
		DeviceID:             t.DeviceID,
		Name:                 deref(t.Tag(twin.TagDeviceName)),
		IsConnected:          t.IsConnected(),
		IsEnabled:            t.IsEnabled(),
		StatusUpdatedAt:      t.StatusUpdatedAt,
		SupportsLoRaFeatures: supportsLoRa,
	}
}

func (DeviceMapper) ApplyToSnapshot(t *twin.Twin, d models.DeviceDetails) {
	t.SetTag(twin.TagDeviceName, d.Name)
	t.SetTag(twin.TagModelID, d.ModelID)
	for key, value := range d.Tags {
		t.SetTag(key, value)
	}
}
