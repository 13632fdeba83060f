package mapper

import (
	"errors"

	"fleethub/internal/models"
	"fleethub/internal/twin"
)

// Mapping failures. Only the snapshot itself or a mandatory identifier can
// fail a mapping; every optional field degrades to its documented fallback.
var (
	ErrNilSnapshot     = errors.New("twin snapshot is missing")
	ErrMissingDeviceID = errors.New("twin snapshot has no device id")
	ErrMissingModelID  = errors.New("twin snapshot has no model id tag")
)

// Mapper is the shared contract of the per-kind twin mappers. Each variant
// owns a disjoint set of twin properties: ApplyToSnapshot never clears or
// rewrites a property outside that set, so partial updates compose.
type Mapper[D any, I any] interface {
	CreateDetails(t *twin.Twin, extraTags []string) (D, error)
	CreateListItem(t *twin.Twin) I
	ApplyToSnapshot(t *twin.Twin, d D)
}

// collectTags copies the caller's tenant-defined tag keys verbatim into a
// domain tag dictionary, keyed by their own names. Absent keys are skipped.
func collectTags(t *twin.Twin, extraTags []string) map[string]string {
	out := make(map[string]string, len(extraTags))
	for _, key := range extraTags {
		if v := t.Tag(key); v != nil {
			out[key] = *v
		}
	}
	return out
}

// deref returns the value or "" for optional strings feeding non-optional
// domain fields.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MergeLabels unions device and model labels by name; duplicates across the
// two sources collapse, device color wins.
func MergeLabels(device, model []models.Label) []string {
	seen := make(map[string]struct{}, len(device)+len(model))
	out := make([]string, 0, len(device)+len(model))
	for _, l := range device {
		if _, ok := seen[l.Name]; ok {
			continue
		}
		seen[l.Name] = struct{}{}
		out = append(out, l.Name)
	}
	for _, l := range model {
		if _, ok := seen[l.Name]; ok {
			continue
		}
		seen[l.Name] = struct{}{}
		out = append(out, l.Name)
	}
	return out
}
