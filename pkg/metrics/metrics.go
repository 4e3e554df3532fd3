package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ErrTypeNetwork   = "network"
	ErrTypeHttp      = "http"
	ErrTypeHydration = "hydration"
)

type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	TotalRequests   *prometheus.CounterVec
	ErrorTotal      *prometheus.CounterVec
}

// NewMetrics registers the client collectors on reg. A nil reg gets a private
// registry so callers can always record.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mgstats_request_duration_seconds",
			Help:    "Histogram of API request latencies.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"endpoint", "status"}),

		TotalRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mgstats_requests_total",
			Help: "Total number of API requests.",
		}, []string{"endpoint"}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mgstats_errors_total",
			Help: "Total number of API errors by type.",
		}, []string{"endpoint", "type"}),
	}
}

func (m *Metrics) ObserveRequest(endpoint string, status int, since time.Time) {
	if m == nil {
		return
	}
	m.TotalRequests.WithLabelValues(endpoint).Inc()
	m.RequestDuration.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(time.Since(since).Seconds())
}

func (m *Metrics) ObserveError(endpoint, errType string) {
	if m == nil {
		return
	}
	m.ErrorTotal.WithLabelValues(endpoint, errType).Inc()
}
