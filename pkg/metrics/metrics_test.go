package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRequest("stats_total", 200, time.Now())
	m.ObserveRequest("stats_total", 401, time.Now())
	m.ObserveError("stats_total", ErrTypeHttp)

	if got := testutil.ToFloat64(m.TotalRequests.WithLabelValues("stats_total")); got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.ErrorTotal.WithLabelValues("stats_total", ErrTypeHttp)); got != 1 {
		t.Errorf("expected 1 http error, got %v", got)
	}
	if got := testutil.CollectAndCount(m.RequestDuration); got != 2 {
		t.Errorf("expected 2 duration series, got %d", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("stats_total", 200, time.Now())
	m.ObserveError("stats_total", ErrTypeNetwork)
}
