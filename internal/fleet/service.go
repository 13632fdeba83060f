package fleet

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"fleethub/internal/logs"
	"fleethub/internal/mapper"
	"fleethub/internal/metrics"
	"fleethub/internal/models"
	"fleethub/internal/registry"
	"fleethub/internal/repo"
	"fleethub/internal/twin"
)

// Store is the persistence contract of the synchronization service.
type Store interface {
	GetByDeviceID(deviceID string) (*models.Device, error)
	Exists(deviceID string) (bool, error)
	Create(d *models.Device) error
	Update(d *models.Device) error
	Delete(deviceID string) error
	GetModel(modelID string) (*models.DeviceModel, error)
	DeviceTelemetry(deviceID string) ([]models.LorawanTelemetry, error)
}

// Service orchestrates the repository, the twin mappers and the registry
// into the device CRUD operations. Mapping is done fresh from the registry
// snapshot on every read; the entity row carries ownership, children and
// the model association.
type Service struct {
	store    Store
	registry registry.Client
	lorawan  mapper.LorawanMapper
	conc     mapper.ConcentratorMapper
	edge     mapper.EdgeMapper
	log      *logrus.Entry
}

func NewService(store Store, reg registry.Client) *Service {
	return &Service{
		store:    store,
		registry: reg,
		log:      logs.Logger.WithField("component", "fleet"),
	}
}

// GetDevice returns the full LoRaWAN detail for one device. The entity row
// must exist; the twin supplies credentials, radio parameters and reported
// state; the model supplies the display image. Tags are filtered down to
// the caller's visible tag set.
func (s *Service) GetDevice(deviceID string, visibleTags []string) (models.LorawanDeviceDetails, error) {
	entity, err := s.store.GetByDeviceID(deviceID)
	if err != nil {
		if repo.IsNotFound(err) {
			return models.LorawanDeviceDetails{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
		}
		return models.LorawanDeviceDetails{}, fmt.Errorf("load device %s: %w", deviceID, err)
	}

	t, err := s.registry.GetTwin(deviceID)
	if err != nil {
		if errors.Is(err, registry.ErrTwinNotFound) {
			return models.LorawanDeviceDetails{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
		}
		return models.LorawanDeviceDetails{}, fmt.Errorf("load twin %s: %w", deviceID, err)
	}

	details, err := s.lorawan.CreateDetails(t, visibleTags)
	if err != nil {
		return models.LorawanDeviceDetails{}, fmt.Errorf("map twin %s: %w", deviceID, err)
	}
	details.ImageURL = s.modelImageURL(details.ModelID)
	details.Labels = mapper.MergeLabels(entity.Labels, nil)
	return details, nil
}

// CreateDevice registers the device in the external registry, then persists
// the entity with its children. Creating an id already present fails with
// ErrDeviceExists.
func (s *Service) CreateDevice(d models.LorawanDeviceDetails) error {
	exists, err := s.store.Exists(d.DeviceID)
	if err != nil {
		return fmt.Errorf("lookup device %s: %w", d.DeviceID, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDeviceExists, d.DeviceID)
	}

	if err := s.pushTwin(d, nil); err != nil {
		return err
	}

	if err := s.store.Create(s.toEntity(d)); err != nil {
		if repo.IsDuplicate(err) {
			return fmt.Errorf("%w: %s", ErrDeviceExists, d.DeviceID)
		}
		return fmt.Errorf("create device %s: %w", d.DeviceID, err)
	}
	return nil
}

// UpdateDevice applies the domain object onto the current twin snapshot and
// replaces the entity's children wholesale. Properties the mapper does not
// own stay untouched on the twin.
func (s *Service) UpdateDevice(d models.LorawanDeviceDetails) error {
	t, err := s.registry.GetTwin(d.DeviceID)
	if err != nil && !errors.Is(err, registry.ErrTwinNotFound) {
		return fmt.Errorf("load twin %s: %w", d.DeviceID, err)
	}
	if err := s.pushTwin(d, t); err != nil {
		return err
	}

	if err := s.store.Update(s.toEntity(d)); err != nil {
		if repo.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrDeviceNotFound, d.DeviceID)
		}
		return fmt.Errorf("update device %s: %w", d.DeviceID, err)
	}
	return nil
}

// DeleteDevice removes the twin and the entity with all children. Deleting
// an unknown device is a no-op.
func (s *Service) DeleteDevice(deviceID string) error {
	if err := s.registry.DeleteTwin(deviceID); err != nil && !errors.Is(err, registry.ErrTwinNotFound) {
		return fmt.Errorf("delete twin %s: %w", deviceID, err)
	}
	if err := s.store.Delete(deviceID); err != nil {
		return fmt.Errorf("delete device %s: %w", deviceID, err)
	}
	return nil
}

// GetDeviceTelemetry returns the stored telemetry newest-first. An unknown
// device yields an empty collection, never an error.
func (s *Service) GetDeviceTelemetry(deviceID string) ([]models.LorawanTelemetryDTO, error) {
	records, err := s.store.DeviceTelemetry(deviceID)
	if err != nil {
		return nil, fmt.Errorf("load telemetry %s: %w", deviceID, err)
	}
	out := make([]models.LorawanTelemetryDTO, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToDTO())
	}
	return out, nil
}

// GetConcentrator returns the concentrator detail for one gateway.
func (s *Service) GetConcentrator(deviceID string) (models.ConcentratorDetails, error) {
	t, err := s.registry.GetTwin(deviceID)
	if err != nil {
		if errors.Is(err, registry.ErrTwinNotFound) {
			return models.ConcentratorDetails{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
		}
		return models.ConcentratorDetails{}, fmt.Errorf("load twin %s: %w", deviceID, err)
	}
	details, err := s.conc.CreateDetails(t, nil)
	if err != nil {
		return models.ConcentratorDetails{}, fmt.Errorf("map twin %s: %w", deviceID, err)
	}
	return details, nil
}

// GetEdgeDevice returns the edge detail, including module and leaf-device
// counts from the runtime snapshot and the device/model label union.
func (s *Service) GetEdgeDevice(deviceID string, visibleTags []string) (models.EdgeDeviceDetails, error) {
	entity, err := s.store.GetByDeviceID(deviceID)
	if err != nil {
		if repo.IsNotFound(err) {
			return models.EdgeDeviceDetails{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
		}
		return models.EdgeDeviceDetails{}, fmt.Errorf("load device %s: %w", deviceID, err)
	}

	t, err := s.registry.GetTwin(deviceID)
	if err != nil {
		if errors.Is(err, registry.ErrTwinNotFound) {
			return models.EdgeDeviceDetails{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
		}
		return models.EdgeDeviceDetails{}, fmt.Errorf("load twin %s: %w", deviceID, err)
	}

	mods, err := s.registry.GetModulesTwin(deviceID)
	if err != nil && !errors.Is(err, registry.ErrTwinNotFound) {
		return models.EdgeDeviceDetails{}, fmt.Errorf("load modules twin %s: %w", deviceID, err)
	}

	var modelLabels []models.Label
	if m, err := s.store.GetModel(entity.ModelID); err == nil {
		modelLabels = m.Labels
	}

	details, err := s.edge.CreateDetails(t, mods, entity.Labels, modelLabels, visibleTags)
	if err != nil {
		return models.EdgeDeviceDetails{}, fmt.Errorf("map twin %s: %w", deviceID, err)
	}
	return details, nil
}

// ── internals ───────────────────────────────────────────────

// pushTwin applies the domain object onto the snapshot (a fresh one when
// the registry has no twin yet) and writes it through.
func (s *Service) pushTwin(d models.LorawanDeviceDetails, t *twin.Twin) error {
	if t == nil {
		t = &twin.Twin{DeviceID: d.DeviceID}
	}
	s.lorawan.ApplyToSnapshot(t, d)
	if err := s.registry.UpdateTwin(d.DeviceID, t); err != nil {
		metrics.TwinSyncFailures.Inc()
		return fmt.Errorf("push twin %s: %w", d.DeviceID, err)
	}
	return nil
}

func (s *Service) toEntity(d models.LorawanDeviceDetails) *models.Device {
	tags := make([]models.DeviceTagValue, 0, len(d.Tags))
	for name, value := range d.Tags {
		tags = append(tags, models.DeviceTagValue{
			DeviceID: d.DeviceID,
			TagName:  name,
			Value:    value,
		})
	}
	labels := make([]models.Label, 0, len(d.Labels))
	for _, name := range d.Labels {
		labels = append(labels, models.Label{
			DeviceID: d.DeviceID,
			Name:     name,
		})
	}
	return &models.Device{
		DeviceID:        d.DeviceID,
		Name:            d.Name,
		ModelID:         d.ModelID,
		IsConnected:     d.IsConnected,
		IsEnabled:       d.IsEnabled,
		StatusUpdatedAt: d.StatusUpdatedAt,
		Version:         d.Version,
		Tags:            tags,
		Labels:          labels,
	}
}

func (s *Service) modelImageURL(modelID string) string {
	m, err := s.store.GetModel(modelID)
	if err != nil {
		return ""
	}
	return m.ImageURL
}
