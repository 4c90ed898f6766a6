package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics tracks client import outcomes.
type ImportMetrics struct {
	rows     *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewImportMetrics registers the importer metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Client import rows by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_duration_seconds",
		Help:    "Wall time of client import runs.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
	reg.MustRegister(rows, duration)
	return &ImportMetrics{rows: rows, duration: duration}
}

// AddRows records count rows with the given outcome (inserted, updated, skipped, error).
func (m *ImportMetrics) AddRows(outcome string, count int) {
	if m == nil || m.rows == nil || count <= 0 {
		return
	}
	m.rows.WithLabelValues(outcome).Add(float64(count))
}

// ObserveDuration records one finished import run.
func (m *ImportMetrics) ObserveDuration(duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(duration.Seconds())
}
