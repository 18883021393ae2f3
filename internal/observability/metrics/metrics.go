package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the availability
// engine. All observe methods are nil-safe so callers can run unmetered.
type SchedulingMetrics struct {
	resolveTotal    prometheus.Counter
	resolveDuration prometheus.Histogram
	blocksResolved  prometheus.Histogram
	slotsGenerated  prometheus.Histogram
	validationTotal *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		resolveTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slotwise",
			Subsystem: "scheduling",
			Name:      "resolve_total",
			Help:      "Total availability resolutions",
		}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slotwise",
			Subsystem: "scheduling",
			Name:      "resolve_duration_seconds",
			Help:      "Latency of availability resolution",
			Buckets:   prometheus.DefBuckets,
		}),
		blocksResolved: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slotwise",
			Subsystem: "scheduling",
			Name:      "blocks_resolved",
			Help:      "Availability blocks produced per resolution",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		slotsGenerated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slotwise",
			Subsystem: "scheduling",
			Name:      "slots_generated",
			Help:      "Slots produced per generation call",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}),
		validationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotwise",
			Subsystem: "scheduling",
			Name:      "booking_validation_total",
			Help:      "Booking window validation verdicts",
		}, []string{"valid", "reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.resolveTotal, m.resolveDuration, m.blocksResolved, m.slotsGenerated, m.validationTotal)
	return m
}

func (m *SchedulingMetrics) ObserveResolve(blocks int, seconds float64) {
	if m == nil {
		return
	}
	m.resolveTotal.Inc()
	m.resolveDuration.Observe(seconds)
	m.blocksResolved.Observe(float64(blocks))
}

func (m *SchedulingMetrics) ObserveSlots(count int) {
	if m == nil {
		return
	}
	m.slotsGenerated.Observe(float64(count))
}

func (m *SchedulingMetrics) ObserveValidation(valid bool, reason string) {
	if m == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
		reason = ""
	}
	m.validationTotal.WithLabelValues(label, reason).Inc()
}
