package models

import (
	"fmt"
	"time"
)

// Domain detail objects built fresh from a twin snapshot on every read.
// Optional fields are pointers; nil means "absent or unparsable upstream"
// and, for radio parameters, "use the network-server default".

// ClassType is the LoRaWAN device class.
type ClassType string

const (
	ClassA ClassType = "A"
	ClassB ClassType = "B"
	ClassC ClassType = "C"
)

func ParseClassType(s string) (ClassType, error) {
	switch ClassType(s) {
	case ClassA, ClassB, ClassC:
		return ClassType(s), nil
	}
	return "", fmt.Errorf("unknown class type %q", s)
}

// DeduplicationMode is the policy for the same uplink heard by several gateways.
type DeduplicationMode string

const (
	DeduplicationNone DeduplicationMode = "None"
	DeduplicationDrop DeduplicationMode = "Drop"
	DeduplicationMark DeduplicationMode = "Mark"
)

func ParseDeduplicationMode(s string) (DeduplicationMode, error) {
	switch DeduplicationMode(s) {
	case DeduplicationNone, DeduplicationDrop, DeduplicationMark:
		return DeduplicationMode(s), nil
	}
	return "", fmt.Errorf("unknown deduplication mode %q", s)
}

// DeviceDetails is the generic device detail object.
type DeviceDetails struct {
	DeviceID        string            `json:"deviceId"`
	ModelID         string            `json:"modelId"`
	Name            string            `json:"deviceName"`
	ImageURL        string            `json:"imageUrl,omitempty"`
	IsConnected     bool              `json:"isConnected"`
	IsEnabled       bool              `json:"isEnabled"`
	StatusUpdatedAt time.Time         `json:"statusUpdatedTime"`
	Version         int64             `json:"version"`
	Tags            map[string]string `json:"tags"`
	Labels          []string          `json:"labels"`
}

// LorawanDeviceDetails is the full LoRaWAN detail. Generic fields are embedded;
// everything else is read from desired/reported properties with the
// per-field fallbacks described on the mapper.
type LorawanDeviceDetails struct {
	DeviceDetails

	// OTAA credentials.
	AppEUI *string `json:"appEUI,omitempty"`
	AppKey *string `json:"appKey,omitempty"`

	// ABP credentials.
	AppSKey *string `json:"appSKey,omitempty"`
	NwkSKey *string `json:"nwkSKey,omitempty"`
	DevAddr *string `json:"devAddr,omitempty"`

	// Derived, never stored: OTAA mode is inferred from a non-empty
	// desired AppEUI; "already joined" from a reported DevAddr.
	UseOTAA             bool `json:"useOTAA"`
	AlreadyLoggedInOnce bool `json:"alreadyLoggedInOnce"`

	// Radio parameters (desired).
	ClassType         ClassType         `json:"classType"`
	Deduplication     DeduplicationMode `json:"deduplication"`
	PreferredWindow   int               `json:"preferredWindow"`
	RX1DROffset       *int              `json:"rx1DROffset,omitempty"`
	RX2DataRate       *int              `json:"rx2DataRate,omitempty"`
	RXDelay           *int              `json:"rxDelay,omitempty"`
	ABPRelaxMode      *bool             `json:"abpRelaxMode,omitempty"`
	FCntUpStart       *int              `json:"fcntUpStart,omitempty"`
	FCntDownStart     *int              `json:"fcntDownStart,omitempty"`
	FCntResetCounter  *int              `json:"fcntResetCounter,omitempty"`
	Supports32BitFCnt *bool             `json:"supports32BitFCnt,omitempty"`
	KeepAliveTimeout  *int              `json:"keepAliveTimeout,omitempty"`
	Downlink          *bool             `json:"downlinkEnabled,omitempty"`

	// Reported-only telemetry summaries; never written back to the twin.
	DataRate            *string `json:"dataRate,omitempty"`
	TxPower             *string `json:"txPower,omitempty"`
	NbRep               *string `json:"nbRep,omitempty"`
	ReportedRX2DataRate *int    `json:"reportedRX2DataRate,omitempty"`
	ReportedRX1DROffset *int    `json:"reportedRX1DROffset,omitempty"`
	ReportedRXDelay     *int    `json:"reportedRXDelay,omitempty"`
}

// ConcentratorDetails is the LoRa concentrator (gateway) detail.
type ConcentratorDetails struct {
	DeviceID         string  `json:"deviceId"`
	Name             string  `json:"deviceName"`
	LoraRegion       string  `json:"loraRegion,omitempty"`
	DeviceType       string  `json:"deviceType,omitempty"`
	ClientThumbprint *string `json:"clientThumbprint,omitempty"`
	IsConnected      bool    `json:"isConnected"`
	IsEnabled        bool    `json:"isEnabled"`
	Version          int64   `json:"version"`
}

// EdgeDeviceDetails is the IoT edge device detail with runtime counts.
type EdgeDeviceDetails struct {
	DeviceID        string            `json:"deviceId"`
	ModelID         string            `json:"modelId"`
	Name            string            `json:"deviceName"`
	ConnectionState string            `json:"connectionState"`
	Scope           string            `json:"scope,omitempty"`
	IsEnabled       bool              `json:"isEnabled"`
	NbDevices       int               `json:"nbDevices"`
	NbModules       int               `json:"nbModules"`
	Modules         []EdgeModule      `json:"modules,omitempty"`
	Tags            map[string]string `json:"tags"`
	Labels          []string          `json:"labels"`
}

// EdgeModule is one runtime module reported by the edge device.
type EdgeModule struct {
	Name    string `json:"moduleName"`
	Version string `json:"version,omitempty"`
	Status  string `json:"status,omitempty"`
}

// DeviceListItem is a lightweight summary for listing views.
type DeviceListItem struct {
	DeviceID             string    `json:"deviceId"`
	Name                 string    `json:"deviceName"`
	IsConnected          bool      `json:"isConnected"`
	IsEnabled            bool      `json:"isEnabled"`
	StatusUpdatedAt      time.Time `json:"statusUpdatedTime"`
	SupportsLoRaFeatures bool      `json:"supportLoRaFeatures"`
}
