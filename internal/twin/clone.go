package twin

import "maps"

// Clone returns a deep copy of the snapshot's bags. Nested values are wire
// scalars or decoded JSON containers and are shared; callers treat them as
// read-only.
func (t *Twin) Clone() *Twin {
	if t == nil {
		return nil
	}
	out := *t
	out.Tags = maps.Clone(t.Tags)
	out.Desired = maps.Clone(t.Desired)
	out.Reported = maps.Clone(t.Reported)
	return &out
}
