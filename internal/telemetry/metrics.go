// Package telemetry defines the Prometheus collectors shared by the snapshot
// adapter, the import pipeline and the HTTP surface.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Write results.
const (
	WriteOK      = "ok"
	WriteError   = "error"
	WriteTimeout = "timeout"
	WriteStale   = "stale"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	SnapshotWrites *prometheus.CounterVec
	Imports        *prometheus.CounterVec
	Records        prometheus.Gauge
}

// New registers the collectors on reg. Passing nil uses a private registry,
// which keeps repeated construction in tests from colliding.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		SnapshotWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "htmlrms",
			Name:      "snapshot_writes_total",
			Help:      "Snapshot writes by result.",
		}, []string{"result"}),
		Imports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "htmlrms",
			Name:      "imports_total",
			Help:      "Import operations by final state.",
		}, []string{"state"}),
		Records: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "htmlrms",
			Name:      "records",
			Help:      "Records in the last written snapshot.",
		}),
	}
}

// WriteResult counts one snapshot write outcome.
func (m *Metrics) WriteResult(result string) {
	if m == nil {
		return
	}
	m.SnapshotWrites.WithLabelValues(result).Inc()
}

// ImportOutcome counts one finished import.
func (m *Metrics) ImportOutcome(state string) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(state).Inc()
}

// SetRecords tracks the size of the collection.
func (m *Metrics) SetRecords(n int) {
	if m == nil {
		return
	}
	m.Records.Set(float64(n))
}
