package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"

	"fleethub/internal/metrics"
	"fleethub/internal/models"
)

type fakeStore struct {
	devices map[string]bool
	records map[string][]models.LorawanTelemetry
	nextID  uint

	existsErr error
	loadErr   error
	appendErr error

	// runs once inside AppendTelemetry, before the uniqueness check, to
	// model a competing consumer landing a row between load and append
	beforeAppend func()
}

func newFakeStore(deviceIDs ...string) *fakeStore {
	s := &fakeStore{
		devices: make(map[string]bool),
		records: make(map[string][]models.LorawanTelemetry),
	}
	for _, id := range deviceIDs {
		s.devices[id] = true
	}
	return s
}

func (s *fakeStore) DeviceExists(deviceID string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.devices[deviceID], nil
}

func (s *fakeStore) DeviceTelemetry(deviceID string) ([]models.LorawanTelemetry, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]models.LorawanTelemetry, len(s.records[deviceID]))
	copy(out, s.records[deviceID])
	return out, nil
}

func (s *fakeStore) AppendTelemetry(rec *models.LorawanTelemetry, evict []models.LorawanTelemetry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	if s.beforeAppend != nil {
		s.beforeAppend()
		s.beforeAppend = nil
	}
	// the real store has a unique (device_id, sequence_number) index
	for _, r := range s.records[rec.DeviceID] {
		if r.SequenceNumber == rec.SequenceNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	s.nextID++
	rec.ID = s.nextID
	kept := append(s.records[rec.DeviceID], *rec)

	drop := make(map[uint]bool, len(evict))
	for _, e := range evict {
		drop[e.ID] = true
	}
	out := kept[:0]
	for _, r := range kept {
		if !drop[r.ID] {
			out = append(out, r)
		}
	}
	s.records[rec.DeviceID] = out
	return nil
}

func event(seq string, at time.Time) Event {
	return Event{
		SequenceNumber: seq,
		EnqueuedAt:     at,
		SystemProperties: map[string]string{
			SysAuthMethod: `{"scope":"device","type":"sas"}`,
			SysDeviceID:   "lora-1",
		},
		Body: []byte(`{"time":"2026-03-01T12:00:00Z","rssi":-97,"lsnr":8.5}`),
	}
}

func TestHandleStoresTelemetry(t *testing.T) {
	t.Parallel()

	store := newFakeStore("lora-1")
	p := New(store, NewRetention(100))

	p.Handle(event("41", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	got := store.records["lora-1"]
	if len(got) != 1 {
		t.Fatalf("stored %d records, want 1", len(got))
	}
	if got[0].SequenceNumber != "41" {
		t.Errorf("SequenceNumber = %q, want 41", got[0].SequenceNumber)
	}
	var payload models.TelemetryPayload
	if err := json.Unmarshal([]byte(got[0].Payload), &payload); err != nil {
		t.Fatalf("stored payload undecodable: %v", err)
	}
	if payload.RSSI == nil || *payload.RSSI != -97 {
		t.Errorf("RSSI = %v, want -97", payload.RSSI)
	}
}

func TestHandleRedeliveryIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newFakeStore("lora-1")
	p := New(store, NewRetention(100))
	ev := event("41", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	p.Handle(ev)
	p.Handle(ev)

	if n := len(store.records["lora-1"]); n != 1 {
		t.Errorf("stored %d records after redelivery, want 1", n)
	}
}

func TestHandleRetainsNewestHundred(t *testing.T) {
	t.Parallel()

	store := newFakeStore("lora-1")
	p := New(store, NewRetention(100))
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 105; i++ {
		p.Handle(event(fmt.Sprintf("%d", i), base.Add(time.Duration(i)*time.Second)))
	}

	got := store.records["lora-1"]
	if len(got) != 100 {
		t.Fatalf("retained %d records, want 100", len(got))
	}
	seqs := make(map[string]bool, len(got))
	for _, r := range got {
		seqs[r.SequenceNumber] = true
	}
	for i := 1; i <= 5; i++ {
		if seqs[fmt.Sprintf("%d", i)] {
			t.Errorf("oldest record %d survived pruning", i)
		}
	}
	for i := 6; i <= 105; i++ {
		if !seqs[fmt.Sprintf("%d", i)] {
			t.Errorf("record %d missing from the retained window", i)
		}
	}
}

func TestHandleDiscardsEventOlderThanWindow(t *testing.T) {
	t.Parallel()

	store := newFakeStore("lora-1")
	p := New(store, NewRetention(2))
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	outOfWindow := metrics.IngestEvents.WithLabelValues(metrics.OutcomeOutOfWindow)
	before := testutil.ToFloat64(outOfWindow)

	p.Handle(event("2", base.Add(2*time.Minute)))
	p.Handle(event("3", base.Add(3*time.Minute)))
	// straggler older than everything retained, at capacity
	p.Handle(event("1", base.Add(1*time.Minute)))

	got := store.records["lora-1"]
	if len(got) != 2 {
		t.Fatalf("retained %d records, want 2", len(got))
	}
	for _, r := range got {
		if r.SequenceNumber == "1" {
			t.Error("straggler older than the window was stored")
		}
	}
	if delta := testutil.ToFloat64(outOfWindow) - before; delta != 1 {
		t.Errorf("out_of_window outcome counted %v times, want 1", delta)
	}
}

func TestHandleConcurrentDuplicateHitsUniqueIndex(t *testing.T) {
	t.Parallel()

	store := newFakeStore("lora-1")
	p := New(store, NewRetention(100))
	ev := event("41", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	// a second consumer lands the same event between our dedupe scan and
	// the append; the unique index turns the second insert into an error
	store.beforeAppend = func() {
		store.records["lora-1"] = append(store.records["lora-1"], models.LorawanTelemetry{
			Model:          gorm.Model{ID: 99},
			DeviceID:       "lora-1",
			SequenceNumber: "41",
			EnqueuedAt:     ev.EnqueuedAt,
		})
	}

	p.Handle(ev) // duplicate-key error must be swallowed

	if n := len(store.records["lora-1"]); n != 1 {
		t.Errorf("stored %d records after a concurrent duplicate, want 1", n)
	}
}

func TestHandleDiscardsIrrelevantAndMalformed(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		mutate func(*Event)
	}{
		{"missing auth-method", func(ev *Event) {
			delete(ev.SystemProperties, SysAuthMethod)
		}},
		{"undecodable auth-method", func(ev *Event) {
			ev.SystemProperties[SysAuthMethod] = "{not json"
		}},
		{"module scope", func(ev *Event) {
			ev.SystemProperties[SysAuthMethod] = `{"scope":"module","type":"sas"}`
		}},
		{"missing device id", func(ev *Event) {
			delete(ev.SystemProperties, SysDeviceID)
		}},
		{"undecodable body", func(ev *Event) {
			ev.Body = []byte("{")
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newFakeStore("lora-1")
			p := New(store, NewRetention(100))
			ev := event("41", base)
			tt.mutate(&ev)
			p.Handle(ev)
			if n := len(store.records["lora-1"]); n != 0 {
				t.Errorf("stored %d records, want the event discarded", n)
			}
		})
	}
}

func TestHandleUnknownDeviceIsSilent(t *testing.T) {
	t.Parallel()

	store := newFakeStore() // no devices registered
	p := New(store, NewRetention(100))

	// deletion race: must not panic, must not store
	p.Handle(event("41", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	if n := len(store.records["lora-1"]); n != 0 {
		t.Errorf("stored %d records for an unknown device, want 0", n)
	}
}

func TestHandleSwallowsStorageFailures(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	boom := errors.New("db gone")

	for _, tt := range []struct {
		name  string
		wound func(*fakeStore)
	}{
		{"lookup fails", func(s *fakeStore) { s.existsErr = boom }},
		{"load fails", func(s *fakeStore) { s.loadErr = boom }},
		{"append fails", func(s *fakeStore) { s.appendErr = boom }},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newFakeStore("lora-1")
			tt.wound(store)
			p := New(store, NewRetention(100))
			// must return normally; errors never reach the consumer
			p.Handle(event("41", base))
			if n := len(store.records["lora-1"]); n != 0 {
				t.Errorf("stored %d records through a failing store, want 0", n)
			}
		})
	}
}
