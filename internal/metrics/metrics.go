package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion outcome labels. One counter increment per inbound event, so the
// discard triage of the pipeline stays alertable per signal.
const (
	OutcomeStored         = "stored"
	OutcomeDuplicate      = "duplicate"
	OutcomeOutOfWindow    = "out_of_window"
	OutcomeMalformed      = "malformed"
	OutcomeIrrelevant     = "irrelevant"
	OutcomeUnknownDevice  = "unknown_device"
	OutcomeStorageFailure = "storage_failure"
)

var (
	IngestEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleethub_ingest_events_total",
		Help: "Telemetry events handled by the ingestion pipeline, by outcome.",
	}, []string{"outcome"})

	TelemetryPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleethub_telemetry_pruned_total",
		Help: "Telemetry records removed by the per-device retention policy.",
	})

	TwinSyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleethub_twin_sync_failures_total",
		Help: "Failed twin write-throughs to the external device registry.",
	})
)
