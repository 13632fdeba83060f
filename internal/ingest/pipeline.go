package ingest

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"fleethub/internal/logs"
	"fleethub/internal/metrics"
	"fleethub/internal/models"
)

// Store is the persistence contract the pipeline needs: existence checks,
// the owning device's current collection, and one atomic append-and-prune.
type Store interface {
	DeviceExists(deviceID string) (bool, error)
	DeviceTelemetry(deviceID string) ([]models.LorawanTelemetry, error)
	AppendTelemetry(rec *models.LorawanTelemetry, evict []models.LorawanTelemetry) error
}

// Pipeline consumes inbound telemetry events: validate, dedupe, append,
// prune. Each call is an independent unit of work; nothing here holds state
// across events and nothing ever propagates an error to the stream consumer.
//
// Discard severities are part of the contract: Warn for malformed events,
// Trace for valid-but-irrelevant ones and for the deletion race on unknown
// devices, Error only for storage failures.
type Pipeline struct {
	store     Store
	retention Retention
	log       *logrus.Entry
}

func New(store Store, retention Retention) *Pipeline {
	return &Pipeline{
		store:     store,
		retention: retention,
		log:       logs.Logger.WithField("component", "ingest"),
	}
}

// Handle processes one inbound event to completion.
func (p *Pipeline) Handle(ev Event) {
	auth, ok := parseAuthMethod(ev.SystemProperties[SysAuthMethod])
	if !ok {
		p.log.Warnf("event %s: missing or malformed %s system property, discarding", ev.SequenceNumber, SysAuthMethod)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return
	}

	if auth.Scope != ScopeDevice {
		// Service- and module-originated traffic is expected and frequent.
		p.log.Tracef("event %s: scope %q is not device-originated, discarding", ev.SequenceNumber, auth.Scope)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeIrrelevant).Inc()
		return
	}

	deviceID := ev.SystemProperties[SysDeviceID]
	if deviceID == "" {
		p.log.Warnf("event %s: missing %s system property, discarding", ev.SequenceNumber, SysDeviceID)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return
	}

	exists, err := p.store.DeviceExists(deviceID)
	if err != nil {
		p.log.WithError(err).Errorf("event %s: device lookup failed for %s", ev.SequenceNumber, deviceID)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeStorageFailure).Inc()
		return
	}
	if !exists {
		// Race between device deletion and in-flight telemetry.
		p.log.Tracef("event %s: device %s not in store, discarding", ev.SequenceNumber, deviceID)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeUnknownDevice).Inc()
		return
	}

	var payload models.TelemetryPayload
	if err := json.Unmarshal(ev.Body, &payload); err != nil {
		p.log.Warnf("event %s: undecodable telemetry body for %s: %v", ev.SequenceNumber, deviceID, err)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return
	}

	records, err := p.store.DeviceTelemetry(deviceID)
	if err != nil {
		p.log.WithError(err).Errorf("event %s: telemetry load failed for %s", ev.SequenceNumber, deviceID)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeStorageFailure).Inc()
		return
	}
	for _, r := range records {
		if r.SequenceNumber == ev.SequenceNumber {
			// Transport redelivery; the append is idempotent.
			p.log.Tracef("event %s: already stored for %s, discarding", ev.SequenceNumber, deviceID)
			metrics.IngestEvents.WithLabelValues(metrics.OutcomeDuplicate).Inc()
			return
		}
	}

	body, _ := json.Marshal(payload)
	rec := models.LorawanTelemetry{
		DeviceID:       deviceID,
		SequenceNumber: ev.SequenceNumber,
		EnqueuedAt:     ev.EnqueuedAt,
		Payload:        string(body),
	}

	combined := make([]models.LorawanTelemetry, 0, len(records)+1)
	combined = append(combined, records...)
	combined = append(combined, rec)

	keepNew := true
	var evict []models.LorawanTelemetry
	for _, e := range p.retention.Evict(combined) {
		if e.ID == 0 && e.SequenceNumber == rec.SequenceNumber {
			// The new record is older than everything retained.
			keepNew = false
			continue
		}
		evict = append(evict, e)
	}
	if !keepNew {
		p.log.Tracef("event %s: older than the retained window for %s, discarding", ev.SequenceNumber, deviceID)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeOutOfWindow).Inc()
		return
	}

	if err := p.store.AppendTelemetry(&rec, evict); err != nil {
		// Swallowed: a single failed event must not halt the consumer.
		// Retry, if any, is the transport's job.
		p.log.WithError(err).Errorf("event %s: telemetry save failed for %s", ev.SequenceNumber, deviceID)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeStorageFailure).Inc()
		return
	}

	if n := len(evict); n > 0 {
		metrics.TelemetryPruned.Add(float64(n))
	}
	metrics.IngestEvents.WithLabelValues(metrics.OutcomeStored).Inc()
}
