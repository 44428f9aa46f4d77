package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records ingestion activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
	active   prometheus.Gauge
}

// NewMetrics registers the ingestion collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "controltower",
			Name:      "ingest_total",
			Help:      "Workbook replaces by tracker and outcome.",
		}, []string{"tracker", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "controltower",
			Name:      "ingest_duration_seconds",
			Help:      "Time spent processing a workbook replace.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tracker"}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "controltower",
			Name:      "ingest_rows_total",
			Help:      "Rows deleted and inserted by workbook replaces.",
		}, []string{"tracker", "entity", "op"}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "controltower",
			Name:      "ingest_active",
			Help:      "Workbook replaces currently in progress.",
		}),
	}
}

func (m *Metrics) observeRun(tracker string, outcome Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(tracker, string(outcome)).Inc()
	m.duration.WithLabelValues(tracker).Observe(elapsed.Seconds())
}

func (m *Metrics) observeCounts(tracker string, counts []EntityCount) {
	if m == nil {
		return
	}
	for _, c := range counts {
		m.rows.WithLabelValues(tracker, c.Entity, "deleted").Add(float64(c.Deleted))
		m.rows.WithLabelValues(tracker, c.Entity, "inserted").Add(float64(c.Inserted))
	}
}

func (m *Metrics) trackActive(delta float64) {
	if m == nil {
		return
	}
	m.active.Add(delta)
}
