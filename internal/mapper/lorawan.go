package mapper

import (
	"strconv"

	"fleethub/internal/models"
	"fleethub/internal/twin"
)

// LorawanMapper maps LoRaWAN leaf devices, the richest of the four kinds.
//
// Fallback table for desired properties:
//
//	Deduplication     -> None
//	ClassType         -> A
//	PreferredWindow   -> 0
//	everything else   -> nil ("use network-server default")
//
// UseOTAA and AlreadyLoggedInOnce are recomputed from the snapshot on every
// read; neither is authoritative state.
type LorawanMapper struct{}

var _ Mapper[models.LorawanDeviceDetails, models.DeviceListItem] = LorawanMapper{}

func (LorawanMapper) CreateDetails(t *twin.Twin, extraTags []string) (models.LorawanDeviceDetails, error) {
	base, err := DeviceMapper{}.CreateDetails(t, extraTags)
	if err != nil {
		return models.LorawanDeviceDetails{}, err
	}

	appEUI := t.DesiredString(twin.DesiredAppEUI)
	reportedDevAddr := t.ReportedString(twin.ReportedDevAddr)

	return models.LorawanDeviceDetails{
		DeviceDetails: base,

		AppEUI:  appEUI,
		AppKey:  t.DesiredString(twin.DesiredAppKey),
		AppSKey: t.DesiredString(twin.DesiredAppSKey),
		NwkSKey: t.DesiredString(twin.DesiredNwkSKey),
		DevAddr: t.DesiredString(twin.DesiredDevAddr),

		UseOTAA:             appEUI != nil && *appEUI != "",
		AlreadyLoggedInOnce: reportedDevAddr != nil && *reportedDevAddr != "",

		ClassType: twin.DesiredEnum(t, twin.DesiredClassType,
			models.ParseClassType, models.ClassA),
		Deduplication: twin.DesiredEnum(t, twin.DesiredDeduplication,
			models.ParseDeduplicationMode, models.DeduplicationNone),
		PreferredWindow:   intOr(t.DesiredInt(twin.DesiredPreferredWindow), 0),
		RX1DROffset:       t.DesiredInt(twin.DesiredRX1DROffset),
		RX2DataRate:       t.DesiredInt(twin.DesiredRX2DataRate),
		RXDelay:           t.DesiredInt(twin.DesiredRXDelay),
		ABPRelaxMode:      t.DesiredBool(twin.DesiredABPRelaxMode),
		FCntUpStart:       t.DesiredInt(twin.DesiredFCntUpStart),
		FCntDownStart:     t.DesiredInt(twin.DesiredFCntDownStart),
		FCntResetCounter:  t.DesiredInt(twin.DesiredFCntResetCounter),
		Supports32BitFCnt: t.DesiredBool(twin.DesiredSupports32BitFCnt),
		KeepAliveTimeout:  t.DesiredInt(twin.DesiredKeepAliveTimeout),
		Downlink:          t.DesiredBool(twin.DesiredDownlink),

		DataRate:            t.ReportedString(twin.ReportedDataRate),
		TxPower:             t.ReportedString(twin.ReportedTXPower),
		NbRep:               t.ReportedString(twin.ReportedNbRep),
		ReportedRX2DataRate: t.ReportedInt(twin.ReportedRX2DataRate),
		ReportedRX1DROffset: t.ReportedInt(twin.ReportedRX1DROffset),
		ReportedRXDelay:     t.ReportedInt(twin.ReportedRXDelay),
	}, nil
}

func (LorawanMapper) CreateListItem(t *twin.Twin) models.DeviceListItem {
	item := DeviceMapper{}.CreateListItem(t)
	item.SupportsLoRaFeatures = true
	return item
}

// ApplyToSnapshot writes the LoRaWAN-owned tags and desired properties.
// nil fields stay untouched on the twin (partial update); reported-only
// fields are never pushed. OTAA/ABP consistency is the caller's job: writes
// here are last-writer-wins per field, with no cross-field validation.
func (LorawanMapper) ApplyToSnapshot(t *twin.Twin, d models.LorawanDeviceDetails) {
	t.SetTag(twin.TagDeviceName, d.Name)
	t.SetTag(twin.TagModelID, d.ModelID)
	t.SetTag(twin.TagSupportLoRa, "true")
	for key, value := range d.Tags {
		t.SetTag(key, value)
	}

	setString(t, twin.DesiredAppEUI, d.AppEUI)
	setString(t, twin.DesiredAppKey, d.AppKey)
	setString(t, twin.DesiredAppSKey, d.AppSKey)
	setString(t, twin.DesiredNwkSKey, d.NwkSKey)
	setString(t, twin.DesiredDevAddr, d.DevAddr)

	t.SetDesired(twin.DesiredClassType, string(d.ClassType))
	t.SetDesired(twin.DesiredDeduplication, string(d.Deduplication))
	t.SetDesired(twin.DesiredPreferredWindow, strconv.Itoa(d.PreferredWindow))

	setInt(t, twin.DesiredRX1DROffset, d.RX1DROffset)
	setInt(t, twin.DesiredRX2DataRate, d.RX2DataRate)
	setInt(t, twin.DesiredRXDelay, d.RXDelay)
	setBool(t, twin.DesiredABPRelaxMode, d.ABPRelaxMode)
	setInt(t, twin.DesiredFCntUpStart, d.FCntUpStart)
	setInt(t, twin.DesiredFCntDownStart, d.FCntDownStart)
	setInt(t, twin.DesiredFCntResetCounter, d.FCntResetCounter)
	setBool(t, twin.DesiredSupports32BitFCnt, d.Supports32BitFCnt)
	setInt(t, twin.DesiredKeepAliveTimeout, d.KeepAliveTimeout)
	setBool(t, twin.DesiredDownlink, d.Downlink)
}

func setString(t *twin.Twin, key string, v *string) {
	if v != nil {
		t.SetDesired(key, *v)
	}
}

func setInt(t *twin.Twin, key string, v *int) {
	if v != nil {
		t.SetDesired(key, strconv.Itoa(*v))
	}
}

func setBool(t *twin.Twin, key string, v *bool) {
	if v != nil {
		t.SetDesired(key, strconv.FormatBool(*v))
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
