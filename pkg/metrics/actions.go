package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ActionMetrics records the mutating actions run by product-detail sessions.
type ActionMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewActionMetrics registers the action metrics on the provided registerer.
func NewActionMetrics(reg prometheus.Registerer) *ActionMetrics {
	if reg == nil {
		return &ActionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pim_action_duration_seconds",
		Help:    "Duration of product-detail actions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pim_action_success_total",
		Help: "Product-detail actions that completed.",
	}, []string{"action"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pim_action_failure_total",
		Help: "Product-detail actions that failed.",
	}, []string{"action"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pim_action_rejected_total",
		Help: "Product-detail actions refused because another action was pending.",
	}, []string{"action"})
	reg.MustRegister(duration, success, failure, rejected)
	return &ActionMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		rejected: rejected,
	}
}

// Observe records the outcome and duration of one action.
func (a *ActionMetrics) Observe(action string, duration time.Duration, err error) {
	if a == nil || a.duration == nil {
		return
	}
	label := normalizeLabel(action)
	a.duration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		a.failure.WithLabelValues(label).Inc()
		return
	}
	a.success.WithLabelValues(label).Inc()
}

// IncRejected counts an action refused by the pending-action token.
func (a *ActionMetrics) IncRejected(action string) {
	if a == nil || a.rejected == nil {
		return
	}
	a.rejected.WithLabelValues(normalizeLabel(action)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
