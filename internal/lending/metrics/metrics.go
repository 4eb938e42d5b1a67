package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the lending module.
type Metrics struct {
	// Decisions by operation (eligibility, origination), approval and tier
	Decisions *prometheus.CounterVec

	// Capacity guard vetoes by guard name
	Vetoes *prometheus.CounterVec

	// Snapshot read latencies by source
	SnapshotLatency *prometheus.HistogramVec

	// Origination transaction latency including lock wait
	OriginationLatency prometheus.Histogram

	// Principal of originated loans
	OriginatedPrincipal prometheus.Counter

	CustomersRegistered prometheus.Counter

	// Customer cache lookups by result
	CacheLookups *prometheus.CounterVec
}

// New creates lending metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creditline_lending_decisions_total",
			Help: "Credit decisions by operation, approval and tier",
		}, []string{"operation", "approved", "tier"}),

		Vetoes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creditline_lending_guard_vetoes_total",
			Help: "Capacity guard vetoes by guard",
		}, []string{"guard"}),

		SnapshotLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creditline_lending_snapshot_duration_seconds",
			Help:    "Duration of snapshot reads by source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"source"}), // source: "customer", "loans", "active_loans"

		OriginationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "creditline_lending_origination_duration_seconds",
			Help:    "Duration of the origination transaction including lock wait",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		OriginatedPrincipal: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditline_lending_originated_principal_total",
			Help: "Sum of principal of originated loans",
		}),

		CustomersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditline_lending_customers_registered_total",
			Help: "Customers registered",
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creditline_lending_customer_cache_lookups_total",
			Help: "Customer cache lookups by result",
		}, []string{"result"}),
	}
}

// IncrementDecision records a decision outcome.
func (m *Metrics) IncrementDecision(operation string, approved bool, tier string) {
	if m != nil {
		label := "false"
		if approved {
			label = "true"
		}
		m.Decisions.WithLabelValues(operation, label, tier).Inc()
	}
}

// IncrementVeto records a fired capacity guard.
func (m *Metrics) IncrementVeto(guard string) {
	if m != nil {
		m.Vetoes.WithLabelValues(guard).Inc()
	}
}

// ObserveSnapshotLatency records the duration of one snapshot read.
func (m *Metrics) ObserveSnapshotLatency(source string, d time.Duration) {
	if m != nil {
		m.SnapshotLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveOriginationLatency records the origination transaction duration.
func (m *Metrics) ObserveOriginationLatency(d time.Duration) {
	if m != nil {
		m.OriginationLatency.Observe(d.Seconds())
	}
}

// AddOriginatedPrincipal adds an originated loan's principal.
func (m *Metrics) AddOriginatedPrincipal(amount float64) {
	if m != nil {
		m.OriginatedPrincipal.Add(amount)
	}
}

func (m *Metrics) IncrementCustomersRegistered() {
	if m != nil {
		m.CustomersRegistered.Inc()
	}
}

// ObserveCacheLookup implements the customer cache observer.
func (m *Metrics) ObserveCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}
