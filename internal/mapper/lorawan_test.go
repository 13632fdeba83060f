package mapper

import (
	"testing"
	"time"

	"fleethub/internal/models"
	"fleethub/internal/twin"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func lorawanTwin() *twin.Twin {
	return &twin.Twin{
		DeviceID:        "lora-1",
		ConnectionState: twin.StateConnected,
		Status:          twin.StatusEnabled,
		StatusUpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Version:         4,
		Tags: map[string]any{
			twin.TagModelID:    "m1",
			twin.TagDeviceName: "parking-sensor",
		},
		Desired:  map[string]any{},
		Reported: map[string]any{},
	}
}

func TestCreateDetailsExample(t *testing.T) {
	t.Parallel()

	tw := lorawanTwin()
	tw.Desired[twin.DesiredClassType] = "C"

	d, err := LorawanMapper{}.CreateDetails(tw, nil)
	if err != nil {
		t.Fatalf("CreateDetails: %v", err)
	}
	if d.ModelID != "m1" {
		t.Errorf("ModelID = %q, want m1", d.ModelID)
	}
	if d.ClassType != models.ClassC {
		t.Errorf("ClassType = %q, want C", d.ClassType)
	}
	if d.Version != 4 || !d.IsConnected || !d.IsEnabled {
		t.Error("registry-derived scalars must come from the snapshot")
	}
}

func TestOTAARoundTrip(t *testing.T) {
	t.Parallel()

	in := models.LorawanDeviceDetails{
		DeviceDetails: models.DeviceDetails{
			DeviceID: "lora-1",
			ModelID:  "m1",
			Name:     "parking-sensor",
		},
		AppEUI:        strp("0102030405060708"),
		AppKey:        strp("000102030405060708090A0B0C0D0E0F"),
		ClassType:     models.ClassA,
		Deduplication: models.DeduplicationDrop,
	}

	tw := &twin.Twin{DeviceID: "lora-1"}
	LorawanMapper{}.ApplyToSnapshot(tw, in)

	out, err := LorawanMapper{}.CreateDetails(tw, nil)
	if err != nil {
		t.Fatalf("CreateDetails: %v", err)
	}
	if !out.UseOTAA {
		t.Error("UseOTAA = false, want true when AppEUI is set")
	}
	if out.AppEUI == nil || *out.AppEUI != *in.AppEUI {
		t.Errorf("AppEUI = %v, want %q", out.AppEUI, *in.AppEUI)
	}
	if out.AppKey == nil || *out.AppKey != *in.AppKey {
		t.Errorf("AppKey = %v, want %q", out.AppKey, *in.AppKey)
	}
	if out.Deduplication != models.DeduplicationDrop {
		t.Errorf("Deduplication = %q, want Drop", out.Deduplication)
	}
}

func TestABPRoundTrip(t *testing.T) {
	t.Parallel()

	in := models.LorawanDeviceDetails{
		DeviceDetails: models.DeviceDetails{
			DeviceID: "lora-2",
			ModelID:  "m1",
			Name:     "water-meter",
		},
		AppSKey:       strp("A1"),
		NwkSKey:       strp("B2"),
		DevAddr:       strp("26011F22"),
		ClassType:     models.ClassA,
		Deduplication: models.DeduplicationNone,
	}

	tw := &twin.Twin{DeviceID: "lora-2"}
	LorawanMapper{}.ApplyToSnapshot(tw, in)

	out, err := LorawanMapper{}.CreateDetails(tw, nil)
	if err != nil {
		t.Fatalf("CreateDetails: %v", err)
	}
	if out.UseOTAA {
		t.Error("UseOTAA = true, want false without AppEUI")
	}
	for name, got := range map[string]*string{
		"AppSKey": out.AppSKey, "NwkSKey": out.NwkSKey, "DevAddr": out.DevAddr,
	} {
		if got == nil {
			t.Errorf("%s lost in round-trip", name)
		}
	}
}

func TestOptionalFieldDegradesToNil(t *testing.T) {
	t.Parallel()

	d, err := LorawanMapper{}.CreateDetails(lorawanTwin(), nil)
	if err != nil {
		t.Fatalf("CreateDetails: %v", err)
	}
	if d.RX1DROffset != nil {
		t.Errorf("RX1DROffset = %d, want nil when the property is absent", *d.RX1DROffset)
	}
	if d.KeepAliveTimeout != nil || d.ABPRelaxMode != nil || d.Downlink != nil {
		t.Error("absent optional properties must map to nil")
	}
}

func TestEnumFallbackDefaults(t *testing.T) {
	t.Parallel()

	tw := lorawanTwin()
	tw.Desired[twin.DesiredDeduplication] = "garbage"
	tw.Desired[twin.DesiredClassType] = "Z"

	d, err := LorawanMapper{}.CreateDetails(tw, nil)
	if err != nil {
		t.Fatalf("CreateDetails: %v", err)
	}
	if d.Deduplication != models.DeduplicationNone {
		t.Errorf("Deduplication = %q, want fallback None", d.Deduplication)
	}
	if d.ClassType != models.ClassA {
		t.Errorf("ClassType = %q, want fallback A", d.ClassType)
	}
	if d.PreferredWindow != 0 {
		t.Errorf("PreferredWindow = %d, want fallback 0", d.PreferredWindow)
	}
}

func TestAlreadyLoggedInOnceFromReportedDevAddr(t *testing.T) {
	t.Parallel()

	tw := lorawanTwin()
	d, _ := LorawanMapper{}.CreateDetails(tw, nil)
	if d.AlreadyLoggedInOnce {
		t.Error("no reported DevAddr, AlreadyLoggedInOnce must be false")
	}

	tw.Reported[twin.ReportedDevAddr] = "26011F22"
	d, _ = LorawanMapper{}.CreateDetails(tw, nil)
	if !d.AlreadyLoggedInOnce {
		t.Error("reported DevAddr present, AlreadyLoggedInOnce must be true")
	}
}

func TestReportedFieldsAreNeverWrittenBack(t *testing.T) {
	t.Parallel()

	d := models.LorawanDeviceDetails{
		DeviceDetails:   models.DeviceDetails{DeviceID: "lora-1", ModelID: "m1", Name: "x"},
		ClassType:       models.ClassA,
		Deduplication:   models.DeduplicationNone,
		DataRate:        strp("SF7BW125"),
		TxPower:         strp("14"),
		ReportedRXDelay: intp(1),
	}

	tw := &twin.Twin{DeviceID: "lora-1"}
	LorawanMapper{}.ApplyToSnapshot(tw, d)

	if len(tw.Reported) != 0 {
		t.Fatalf("ApplyToSnapshot wrote reported properties: %v", tw.Reported)
	}
}

func TestApplyLeavesUnownedAndAbsentFieldsUntouched(t *testing.T) {
	t.Parallel()

	tw := &twin.Twin{
		DeviceID: "lora-1",
		Desired: map[string]any{
			twin.DesiredRX1DROffset: "2",
			"someOtherOwner":        "keep-me",
		},
	}

	d := models.LorawanDeviceDetails{
		DeviceDetails: models.DeviceDetails{DeviceID: "lora-1", ModelID: "m1", Name: "x"},
		ClassType:     models.ClassA,
		Deduplication: models.DeduplicationNone,
		// RX1DROffset nil: partial update must not clear it
	}
	LorawanMapper{}.ApplyToSnapshot(tw, d)

	if v := tw.DesiredString(twin.DesiredRX1DROffset); v == nil {
		t.Error("nil domain field cleared an existing desired property")
	}
	if tw.Desired["someOtherOwner"] != "keep-me" {
		t.Error("property outside the mapper's ownership was modified")
	}
}

func TestCreateDetailsMandatoryFields(t *testing.T) {
	t.Parallel()

	if _, err := (LorawanMapper{}).CreateDetails(nil, nil); err != ErrNilSnapshot {
		t.Errorf("nil snapshot: err = %v, want ErrNilSnapshot", err)
	}

	tw := lorawanTwin()
	delete(tw.Tags, twin.TagModelID)
	if _, err := (LorawanMapper{}).CreateDetails(tw, nil); err != ErrMissingModelID {
		t.Errorf("missing model id: err = %v, want ErrMissingModelID", err)
	}

	tw = lorawanTwin()
	tw.DeviceID = ""
	if _, err := (LorawanMapper{}).CreateDetails(tw, nil); err != ErrMissingDeviceID {
		t.Errorf("missing device id: err = %v, want ErrMissingDeviceID", err)
	}
}

func TestExtraTagsCopiedVerbatim(t *testing.T) {
	t.Parallel()

	tw := lorawanTwin()
	tw.Tags["site"] = "plant-42"
	tw.Tags["owner"] = "facilities"
	tw.Tags["secret"] = "hidden"

	d, err := LorawanMapper{}.CreateDetails(tw, []string{"site", "owner", "unset"})
	if err != nil {
		t.Fatalf("CreateDetails: %v", err)
	}
	if d.Tags["site"] != "plant-42" || d.Tags["owner"] != "facilities" {
		t.Errorf("Tags = %v, want site/owner copied", d.Tags)
	}
	if _, ok := d.Tags["secret"]; ok {
		t.Error("tag outside the visible set leaked into the detail")
	}
	if _, ok := d.Tags["unset"]; ok {
		t.Error("absent tag key must be skipped, not mapped empty")
	}
}
