package twin

import (
	"testing"
)

func TestTagCoercion(t *testing.T) {
	t.Parallel()

	tw := &Twin{
		DeviceID: "dev-1",
		Tags: map[string]any{
			"name":    "sensor-7",
			"count":   float64(3),
			"flag":    true,
			"missing": nil,
		},
	}

	tests := []struct {
		key  string
		want string
		nil_ bool
	}{
		{key: "name", want: "sensor-7"},
		{key: "count", want: "3"},
		{key: "flag", want: "true"},
		{key: "missing", nil_: true},
		{key: "absent", nil_: true},
	}
	for _, tt := range tests {
		got := tw.Tag(tt.key)
		if tt.nil_ {
			if got != nil {
				t.Errorf("Tag(%q) = %q, want nil", tt.key, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("Tag(%q) = %v, want %q", tt.key, got, tt.want)
		}
	}
}

func TestNilSnapshotReadsAreNil(t *testing.T) {
	t.Parallel()

	var tw *Twin
	if tw.Tag("x") != nil || tw.DesiredString("x") != nil || tw.ReportedString("x") != nil {
		t.Fatal("nil snapshot must read as absent")
	}
	if tw.DesiredInt("x") != nil || tw.DesiredBool("x") != nil {
		t.Fatal("typed reads on nil snapshot must be nil")
	}
}

func TestDesiredTypedParsing(t *testing.T) {
	t.Parallel()

	tw := &Twin{Desired: map[string]any{
		"offset":  "3",
		"relax":   "true",
		"garbage": "not-a-number",
		"native":  float64(7),
	}}

	if v := tw.DesiredInt("offset"); v == nil || *v != 3 {
		t.Errorf("DesiredInt(offset) = %v, want 3", v)
	}
	if v := tw.DesiredInt("native"); v == nil || *v != 7 {
		t.Errorf("DesiredInt(native) = %v, want 7", v)
	}
	if v := tw.DesiredInt("garbage"); v != nil {
		t.Errorf("DesiredInt(garbage) = %d, want nil", *v)
	}
	if v := tw.DesiredBool("relax"); v == nil || !*v {
		t.Errorf("DesiredBool(relax) = %v, want true", v)
	}
	if v := tw.DesiredBool("garbage"); v != nil {
		t.Errorf("DesiredBool(garbage) = %v, want nil", *v)
	}
}

func TestDesiredEnumFallsBackOnParseFailure(t *testing.T) {
	t.Parallel()

	type mode string
	parse := func(s string) (mode, error) {
		if s == "Drop" {
			return mode("Drop"), nil
		}
		return "", errTest
	}

	tw := &Twin{Desired: map[string]any{"mode": "garbage"}}
	if got := DesiredEnum(tw, "mode", parse, mode("None")); got != "None" {
		t.Errorf("unparsable enum = %q, want fallback None", got)
	}

	tw.Desired["mode"] = "Drop"
	if got := DesiredEnum(tw, "mode", parse, mode("None")); got != "Drop" {
		t.Errorf("parsable enum = %q, want Drop", got)
	}

	if got := DesiredEnum(nil, "mode", parse, mode("None")); got != "None" {
		t.Errorf("nil snapshot enum = %q, want fallback None", got)
	}
}

func TestSetDesiredClearable(t *testing.T) {
	t.Parallel()

	tw := &Twin{}
	tw.SetDesiredClearable("thumbprint", "AA:BB")
	if v := tw.DesiredString("thumbprint"); v == nil || *v != "AA:BB" {
		t.Fatalf("thumbprint = %v, want AA:BB", v)
	}

	tw.SetDesiredClearable("thumbprint", "")
	if _, ok := tw.Desired["thumbprint"]; ok {
		t.Fatal("empty write must clear the entry, not store an empty string")
	}
}

func TestDerivedConnectivity(t *testing.T) {
	t.Parallel()

	tw := &Twin{ConnectionState: StateConnected, Status: StatusEnabled}
	if !tw.IsConnected() || !tw.IsEnabled() {
		t.Fatal("connected/enabled twin must derive true")
	}
	tw = &Twin{ConnectionState: StateDisconnected, Status: StatusDisabled}
	if tw.IsConnected() || tw.IsEnabled() {
		t.Fatal("disconnected/disabled twin must derive false")
	}
}

var errTest = errTestType{}

type errTestType struct{}

func (errTestType) Error() string { return "test error" }
