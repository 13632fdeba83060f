package repo

import (
	"errors"

	"gorm.io/gorm"

	"fleethub/internal/models"
)

// FleetStore is the GORM-backed store for devices, their tag/label children and
// their telemetry collections.
type FleetStore struct {
	db *gorm.DB
}

func NewFleetStore(db *gorm.DB) *FleetStore { return &FleetStore{db: db} }

// GetByDeviceID loads a device with its tag and label associations eagerly.
func (s *FleetStore) GetByDeviceID(deviceID string) (*models.Device, error) {
	var d models.Device
	err := s.db.
		Preload("Tags").
		Preload("Labels").
		Where("device_id = ?", deviceID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Exists reports whether a device row exists without loading it.
func (s *FleetStore) Exists(deviceID string) (bool, error) {
	var n int64
	err := s.db.Model(&models.Device{}).
		Where("device_id = ?", deviceID).
		Count(&n).Error
	return n > 0, err
}

// Create inserts the device with its children. A pre-existing device id is
// an error the service translates to "already exists".
func (s *FleetStore) Create(d *models.Device) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Device{}).
			Where("device_id = ?", d.DeviceID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(d).Error
	})
}

// Update saves the device row and replaces the tag and label children
// wholesale: delete then reinsert, not a diff.
func (s *FleetStore) Update(d *models.Device) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Device
		if err := tx.Where("device_id = ?", d.DeviceID).First(&existing).Error; err != nil {
			return err
		}
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt

		if err := tx.Where("device_id = ?", d.DeviceID).
			Delete(&models.DeviceTagValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("device_id = ?", d.DeviceID).
			Delete(&models.Label{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Telemetry").Save(d).Error; err != nil {
			return err
		}
		return nil
	})
}

// Delete cascades over tags, labels and telemetry, then removes the device
// row. Deleting an absent device is a no-op, not an error.
func (s *FleetStore) Delete(deviceID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", deviceID).
			Delete(&models.DeviceTagValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("device_id = ?", deviceID).
			Delete(&models.Label{}).Error; err != nil {
			return err
		}
		if err := tx.Where("device_id = ?", deviceID).
			Delete(&models.LorawanTelemetry{}).Error; err != nil {
			return err
		}
		return tx.Where("device_id = ?", deviceID).
			Delete(&models.Device{}).Error
	})
}

// GetModel loads a device model by its model id.
func (s *FleetStore) GetModel(modelID string) (*models.DeviceModel, error) {
	var m models.DeviceModel
	err := s.db.Preload("Labels").
		Where("model_id = ?", modelID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ── telemetry (ingest.Store) ────────────────────────────────

// DeviceExists satisfies the ingestion pipeline's lookup.
func (s *FleetStore) DeviceExists(deviceID string) (bool, error) {
	return s.Exists(deviceID)
}

// DeviceTelemetry returns the device's collection newest-first.
func (s *FleetStore) DeviceTelemetry(deviceID string) ([]models.LorawanTelemetry, error) {
	var out []models.LorawanTelemetry
	err := s.db.Where("device_id = ?", deviceID).
		Order("enqueued_at DESC").
		Find(&out).Error
	return out, err
}

// AppendTelemetry inserts one record and removes the evicted ones in a
// single transaction, so append and prune land atomically.
func (s *FleetStore) AppendTelemetry(rec *models.LorawanTelemetry, evict []models.LorawanTelemetry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if len(evict) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(evict))
		for _, e := range evict {
			if e.ID != 0 {
				ids = append(ids, e.ID)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Delete(&models.LorawanTelemetry{}, ids).Error
	})
}

// IsNotFound reports whether err is the store's not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is the store's uniqueness violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
