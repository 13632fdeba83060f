package models

import (
	"time"

	"gorm.io/gorm"
)

// Device is the fleet entity backing every twin-mapped device kind.
type Device struct {
	gorm.Model
	DeviceID        string `gorm:"type:varchar(128);uniqueIndex"`
	Name            string
	ModelID         string `gorm:"type:varchar(128);index"`
	IsConnected     bool
	IsEnabled       bool
	StatusUpdatedAt time.Time
	Version         int64

	Tags      []DeviceTagValue   `gorm:"foreignKey:DeviceID;references:DeviceID"`
	Labels    []Label            `gorm:"foreignKey:DeviceID;references:DeviceID"`
	Telemetry []LorawanTelemetry `gorm:"foreignKey:DeviceID;references:DeviceID"`
}

// DeviceModel is the catalog entry a device is provisioned from.
type DeviceModel struct {
	gorm.Model
	ModelID             string `gorm:"type:varchar(128);uniqueIndex"`
	Name                string
	Description         string `gorm:"type:varchar(255)"`
	ImageURL            string `gorm:"type:varchar(255)"`
	SupportLoRaFeatures bool

	Labels []Label `gorm:"foreignKey:ModelID;references:ModelID"`
}

// DeviceTagValue is one tenant-defined tag value on a device.
type DeviceTagValue struct {
	gorm.Model
	DeviceID string `gorm:"type:varchar(128);index:idx_devtag,priority:1"`
	TagName  string `gorm:"type:varchar(64);index:idx_devtag,priority:2"`
	Value    string
}

// Label is a free-form label attached to a device or to a model.
type Label struct {
	gorm.Model
	DeviceID string `gorm:"type:varchar(128);index"`
	ModelID  string `gorm:"type:varchar(128);index"`
	Name     string `gorm:"type:varchar(64)"`
	Color    string `gorm:"type:varchar(16)"`
}
