package mapper

import (
	"strings"

	"fleethub/internal/models"
	"fleethub/internal/twin"
)

// ConcentratorMapper maps LoRa concentrators (gateways). Model identity is
// not mandatory here: concentrators are registered directly, not provisioned
// from a catalog model.
type ConcentratorMapper struct{}

var _ Mapper[models.ConcentratorDetails, models.DeviceListItem] = ConcentratorMapper{}

func (ConcentratorMapper) CreateDetails(t *twin.Twin, _ []string) (models.ConcentratorDetails, error) {
	if t == nil {
		return models.ConcentratorDetails{}, ErrNilSnapshot
	}
	if t.DeviceID == "" {
		return models.ConcentratorDetails{}, ErrMissingDeviceID
	}

	return models.ConcentratorDetails{
		DeviceID:         t.DeviceID,
		Name:             deref(t.Tag(twin.TagDeviceName)),
		LoraRegion:       deref(t.Tag(twin.TagLoRaRegion)),
		DeviceType:       deref(t.Tag(twin.TagDeviceType)),
		ClientThumbprint: clientThumbprint(t),
		IsConnected:      t.IsConnected(),
		IsEnabled:        t.IsEnabled(),
		Version:          t.Version,
	}, nil
}

func (ConcentratorMapper) CreateListItem(t *twin.Twin) models.DeviceListItem {
	item := DeviceMapper{}.CreateListItem(t)
	item.SupportsLoRaFeatures = true
	return item
}

// ApplyToSnapshot writes the concentrator-owned tags. The thumbprint is
// optional-clearable: nil leaves the twin untouched, empty clears the entry.
func (ConcentratorMapper) ApplyToSnapshot(t *twin.Twin, d models.ConcentratorDetails) {
	t.SetTag(twin.TagDeviceName, d.Name)
	t.SetTag(twin.TagLoRaRegion, d.LoraRegion)
	t.SetTag(twin.TagDeviceType, d.DeviceType)
	if d.ClientThumbprint != nil {
		t.SetDesiredClearable(twin.DesiredThumbprint, *d.ClientThumbprint)
	}
}

// clientThumbprint extracts the certificate thumbprint from the desired
// properties. The registry stores it either as a plain string or as an
// array of thumbprints, in which case the first non-empty one wins.
// Absence in any form yields nil.
func clientThumbprint(t *twin.Twin) *string {
	if t == nil || t.Desired == nil {
		return nil
	}
	raw, ok := t.Desired[twin.DesiredThumbprint]
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return &v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return &s
			}
		}
	}
	return nil
}
