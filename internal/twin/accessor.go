package twin

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"fleethub/internal/logs"
)

// Property accessor over the three twin bags. All read paths degrade to nil
// on absence or malformed input: a single bad tag must never abort mapping
// of an otherwise valid device. Only the Set* calls mutate the snapshot.

// Tag returns the tag value, or nil when the key or the snapshot is absent.
func (t *Twin) Tag(key string) *string {
	if t == nil {
		return nil
	}
	return coerce(t.Tags, key)
}

// DesiredString returns the desired property value as a string, or nil.
func (t *Twin) DesiredString(key string) *string {
	if t == nil {
		return nil
	}
	return coerce(t.Desired, key)
}

// ReportedString returns the reported property value as a string, or nil.
func (t *Twin) ReportedString(key string) *string {
	if t == nil {
		return nil
	}
	return coerce(t.Reported, key)
}

// DesiredBool parses the desired property as a boolean; nil on failure.
func (t *Twin) DesiredBool(key string) *bool {
	return parseBool(t.DesiredString(key))
}

// DesiredInt parses the desired property as an integer; nil on failure.
func (t *Twin) DesiredInt(key string) *int {
	return parseInt(t.DesiredString(key))
}

// ReportedInt parses the reported property as an integer; nil on failure.
func (t *Twin) ReportedInt(key string) *int {
	return parseInt(t.ReportedString(key))
}

// DesiredEnum parses the desired property through the given parser. Parse
// failure returns def, not an error; the fallback is logged at debug level
// so corrupted upstream values stay observable.
func DesiredEnum[T ~string](t *Twin, key string, parse func(string) (T, error), def T) T {
	raw := t.DesiredString(key)
	if raw == nil {
		return def
	}
	v, err := parse(*raw)
	if err != nil {
		logs.Logger.Debugf("twin %s: desired %s=%q unparsable, using %q", t.DeviceID, key, *raw, string(def))
		return def
	}
	return v
}

// SetTag writes a tag value, allocating the bag on first use.
func (t *Twin) SetTag(key, value string) {
	if t.Tags == nil {
		t.Tags = make(map[string]any)
	}
	t.Tags[key] = value
}

// SetDesired writes a desired property.
func (t *Twin) SetDesired(key string, value any) {
	if t.Desired == nil {
		t.Desired = make(map[string]any)
	}
	t.Desired[key] = value
}

// SetDesiredClearable writes a desired property, removing the entry when the
// value is empty. For optional-clearable fields (client certificate
// thumbprint) an empty write must clear, not store "".
func (t *Twin) SetDesiredClearable(key, value string) {
	if strings.TrimSpace(value) == "" {
		delete(t.Desired, key)
		return
	}
	t.SetDesired(key, value)
}

// ── coercion helpers ────────────────────────────────────────

func coerce(bag map[string]any, key string) *string {
	if bag == nil {
		return nil
	}
	raw, ok := bag[key]
	if !ok || raw == nil {
		return nil
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case bool:
		s = strconv.FormatBool(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case json.Number:
		s = v.String()
	default:
		s = fmt.Sprintf("%v", v)
	}
	return &s
}

func parseBool(raw *string) *bool {
	if raw == nil {
		return nil
	}
	v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(*raw)))
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(raw *string) *int {
	if raw == nil {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	return &v
}
