package report

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rohmanhakim/docs-harvester/internal/record"
)

// Metrics holds the per-run counters. Each run owns its registry, so the
// text file only ever describes one batch.
type Metrics struct {
	registry *prometheus.Registry

	ReferencesTotal *prometheus.CounterVec
	SourceUsedTotal *prometheus.CounterVec
	AttemptsTotal   *prometheus.CounterVec
	RejectionsTotal *prometheus.CounterVec
	ArtifactBytes   prometheus.Counter
	RunDuration     prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.ReferencesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docs_harvester_references_total",
			Help: "References resolved, by terminal status",
		},
		[]string{"status"},
	)
	m.SourceUsedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docs_harvester_source_used_total",
			Help: "Successful references, by the source that produced them",
		},
		[]string{"source"},
	)
	m.AttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docs_harvester_attempts_total",
			Help: "Fetch attempts, by source and outcome",
		},
		[]string{"source", "outcome"},
	)
	m.RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docs_harvester_rejections_total",
			Help: "Candidates turned down by the validator, by reason",
		},
		[]string{"reason"},
	)
	m.ArtifactBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docs_harvester_artifact_bytes_total",
			Help: "Bytes of accepted artifacts written to storage",
		},
	)
	m.RunDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docs_harvester_run_duration_seconds",
			Help: "Wall-clock duration of the run",
		},
	)

	m.registry.MustRegister(
		m.ReferencesTotal,
		m.SourceUsedTotal,
		m.AttemptsTotal,
		m.RejectionsTotal,
		m.ArtifactBytes,
		m.RunDuration,
	)
	return m
}

// Observe adds one finished record to the counters.
func (m *Metrics) Observe(rec record.DocumentRecord) {
	m.ReferencesTotal.WithLabelValues(string(rec.Status)).Inc()
	if rec.Status == record.StatusSuccess && rec.SourceUsed != "" {
		m.SourceUsedTotal.WithLabelValues(string(rec.SourceUsed)).Inc()
	}
	for _, attempt := range rec.Attempts {
		m.AttemptsTotal.WithLabelValues(string(attempt.Source), string(attempt.Outcome)).Inc()
		if attempt.Outcome == record.OutcomeRejected && attempt.Reason != "" {
			m.RejectionsTotal.WithLabelValues(string(attempt.Reason)).Inc()
		}
	}
	for _, file := range rec.Files {
		m.ArtifactBytes.Add(float64(file.Size))
	}
}

func (m *Metrics) SetDuration(elapsed time.Duration) {
	m.RunDuration.Set(elapsed.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry in the node-exporter text-file format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return &ReportError{Message: err.Error(), Cause: ErrCauseWriteFailure, Path: path}
	}
	return nil
}
