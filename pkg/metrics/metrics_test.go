package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestActionMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewActionMetrics(reg)
	metrics.Observe("save", 250*time.Millisecond, nil)
	metrics.Observe("publish", 10*time.Millisecond, errors.New("boom"))
	metrics.IncRejected("save")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "pim_action_success_total", "action", "save"); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "pim_action_failure_total", "action", "publish"); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "pim_action_rejected_total", "action", "save"); err != nil {
		t.Fatalf("fetch rejected: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "pim_action_duration_seconds", "action", "save"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestGatewayMetricsStatusClasses(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewGatewayMetrics(reg)
	metrics.ObserveRequest("GET", 200)
	metrics.ObserveRequest("GET", 204)
	metrics.ObserveRequest("PUT", 0)
	metrics.ObserveRefresh(false)
	metrics.IncTermination("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "pim_upstream_requests_total", "status", "2xx"); err != nil || got != 2 {
		t.Fatalf("expected 2xx=2, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "pim_upstream_requests_total", "status", "error"); err != nil || got != 1 {
		t.Fatalf("expected error=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "pim_upstream_token_refresh_total", "outcome", "failure"); err != nil || got != 1 {
		t.Fatalf("expected refresh failure=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "pim_session_terminations_total", "reason", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected termination=1, got %f err=%v", got, err)
	}
}

func TestJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewJobMetrics(reg)
	metrics.Observe("detail-session-sweep", 5*time.Millisecond, nil)
	metrics.Observe("detail-session-sweep", 5*time.Millisecond, errors.New("boom"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "pim_job_success_total", "job", "detail-session-sweep"); err != nil || got != 1 {
		t.Fatalf("expected success=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "pim_job_failure_total", "job", "detail-session-sweep"); err != nil || got != 1 {
		t.Fatalf("expected failure=1, got %f err=%v", got, err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var actions *ActionMetrics
	actions.Observe("save", time.Second, nil)
	actions.IncRejected("save")
	var gateway *GatewayMetrics
	gateway.ObserveRequest("GET", 500)
	NewGatewayMetrics(nil).ObserveRefresh(true)
	var jobs *JobMetrics
	jobs.Observe("sweep", time.Second, nil)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
