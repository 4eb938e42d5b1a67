package ops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the sampling appender keeps and drops.
type Metrics struct {
	Tracked         prometheus.Counter
	Sampled         prometheus.Counter
	PersistFailures prometheus.Counter
}

// NewMetrics registers the ops audit metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Tracked: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditline_audit_ops_tracked_total",
			Help: "Total number of operations audit events forwarded",
		}),
		Sampled: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditline_audit_ops_sampled_total",
			Help: "Total number of operations audit events dropped by sampling",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditline_audit_ops_persist_failures_total",
			Help: "Total number of operations audit events the sink rejected",
		}),
	}
}

func (m *Metrics) incTracked() {
	if m != nil {
		m.Tracked.Inc()
	}
}

func (m *Metrics) incSampled() {
	if m != nil {
		m.Sampled.Inc()
	}
}

func (m *Metrics) incPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}
