package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records upstream traffic issued on behalf of console users.
type GatewayMetrics struct {
	requests     *prometheus.CounterVec
	refreshes    *prometheus.CounterVec
	terminations *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pim_upstream_requests_total",
		Help: "Upstream API requests by method and status class.",
	}, []string{"method", "status"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pim_upstream_token_refresh_total",
		Help: "Access token refresh attempts by outcome.",
	}, []string{"outcome"})
	terminations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pim_session_terminations_total",
		Help: "Console sessions ended by the gateway, by reason.",
	}, []string{"reason"})
	reg.MustRegister(requests, refreshes, terminations)
	return &GatewayMetrics{
		requests:     requests,
		refreshes:    refreshes,
		terminations: terminations,
	}
}

// ObserveRequest counts one upstream response. A zero status means the
// request never got a response.
func (g *GatewayMetrics) ObserveRequest(method string, status int) {
	if g == nil || g.requests == nil {
		return
	}
	g.requests.WithLabelValues(normalizeLabel(method), statusClass(status)).Inc()
}

// ObserveRefresh counts one refresh attempt.
func (g *GatewayMetrics) ObserveRefresh(ok bool) {
	if g == nil || g.refreshes == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	g.refreshes.WithLabelValues(outcome).Inc()
}

// IncTermination counts one terminated session.
func (g *GatewayMetrics) IncTermination(reason string) {
	if g == nil || g.terminations == nil {
		return
	}
	g.terminations.WithLabelValues(normalizeLabel(reason)).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
