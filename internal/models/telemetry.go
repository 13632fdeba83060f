package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// LorawanTelemetry is one uplink stored against its owning device. Identity
// within the device is the string-encoded sequence number, enforced by the
// unique index so concurrent deliveries of the same event cannot both land;
// retention prunes by EnqueuedAt. The radio payload is kept as JSON text.
type LorawanTelemetry struct {
	gorm.Model
	DeviceID       string    `gorm:"type:varchar(128);uniqueIndex:idx_tel_dev,priority:1"`
	SequenceNumber string    `gorm:"type:varchar(32);uniqueIndex:idx_tel_dev,priority:2"`
	EnqueuedAt     time.Time `gorm:"index"`
	Payload        string    `gorm:"type:text"`
}

// TelemetryPayload is the radio-level uplink body. Everything except the
// device timestamp is optional; gateways differ in what they report.
type TelemetryPayload struct {
	Time        time.Time `json:"time"`
	Frequency   *float64  `json:"freq,omitempty"`
	Channel     *int      `json:"chan,omitempty"`
	DataRate    *string   `json:"datr,omitempty"`
	RSSI        *float64  `json:"rssi,omitempty"`
	SNR         *float64  `json:"lsnr,omitempty"`
	FCnt        *int      `json:"fcnt,omitempty"`
	GatewayID   *string   `json:"gatewayId,omitempty"`
	StationID   *string   `json:"stationId,omitempty"`
	RawPayload  *string   `json:"rawPayload,omitempty"`
	IsDuplicate *bool     `json:"dup,omitempty"`
}

// LorawanTelemetryDTO is the read-side shape returned to callers.
type LorawanTelemetryDTO struct {
	SequenceNumber string           `json:"sequenceNumber"`
	EnqueuedAt     time.Time        `json:"enqueuedAt"`
	Telemetry      TelemetryPayload `json:"telemetry"`
}

// ToDTO decodes the stored payload. An undecodable payload column yields a
// DTO with a zero payload rather than an error; the row itself is still
// addressable by sequence number.
func (t LorawanTelemetry) ToDTO() LorawanTelemetryDTO {
	var p TelemetryPayload
	_ = json.Unmarshal([]byte(t.Payload), &p)
	return LorawanTelemetryDTO{
		SequenceNumber: t.SequenceNumber,
		EnqueuedAt:     t.EnqueuedAt,
		Telemetry:      p,
	}
}
