package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics records outcomes of domain-layer operations. A nil receiver
// (or nil registerer) disables collection, so services can take it optionally.
type DomainMetrics struct {
	duration  *prometheus.HistogramVec
	conflicts *prometheus.CounterVec
}

// NewDomainMetrics registers the domain metrics on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "domain_op_duration_seconds",
		Help:    "Duration of domain operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_op_conflicts",
		Help: "Domain operations rejected by a conflict or state guard.",
	}, []string{"op", "kind"})
	reg.MustRegister(duration, conflicts)
	return &DomainMetrics{
		duration:  duration,
		conflicts: conflicts,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *DomainMetrics) ObserveDuration(op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncConflict increments the conflict counter for the named operation.
func (m *DomainMetrics) IncConflict(op, kind string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(op), normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
