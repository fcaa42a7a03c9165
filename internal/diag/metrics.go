package diag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unknownKind = "unknown"

// Metrics counts recorded and dropped entries.
type Metrics struct {
	failures *prometheus.CounterVec
	dropped  prometheus.Counter
}

// NewMetrics registers the counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agrotrack",
			Name:      "failures_total",
			Help:      "Handled failures by taxonomy kind.",
		}, []string{"kind"}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agrotrack",
			Name:      "diagnostics_dropped_total",
			Help:      "Diagnostic entries dropped because the buffer was full or closed.",
		}),
	}
}

func (m *Metrics) observe(e Entry) {
	if m == nil {
		return
	}
	kind := e.Kind
	if kind == "" {
		kind = unknownKind
	}
	m.failures.WithLabelValues(kind).Inc()
}

func (m *Metrics) drop() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}
