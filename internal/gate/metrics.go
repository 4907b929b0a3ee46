package gate

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates probe and verdict observations. Collaborators that
// perform I/O (prober, harness) record into it; the predicates never do.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Latency   prometheus.Histogram
	Throttles prometheus.Counter
	Verdicts  *prometheus.CounterVec
}

// NewMetrics builds the metric set and registers it with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "soundcheck",
			Subsystem: "probe",
			Name:      "latency_seconds",
			Help:      "Round-trip time of festival endpoint probes.",
			Buckets:   prometheus.DefBuckets,
		}),
		Throttles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soundcheck",
			Subsystem: "probe",
			Name:      "throttled_total",
			Help:      "Probes answered with 429. Counted, never failed.",
		}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soundcheck",
			Name:      "verdicts_total",
			Help:      "Verification verdicts by check and outcome.",
		}, []string{"check", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Latency, m.Throttles, m.Verdicts)
	}
	return m
}

// Observe records one probe exchange: its latency, and a throttle count
// when the upstream answered 429.
func (m *Metrics) Observe(r Response) {
	if m == nil {
		return
	}
	m.Latency.Observe(r.Duration.Seconds())
	if Throttled(r) {
		m.Throttles.Inc()
	}
}

// CountVerdict records the outcome of a single named check.
func (m *Metrics) CountVerdict(check string, pass bool) {
	if m == nil {
		return
	}
	outcome := "fail"
	if pass {
		outcome = "pass"
	}
	m.Verdicts.WithLabelValues(check, outcome).Inc()
}
