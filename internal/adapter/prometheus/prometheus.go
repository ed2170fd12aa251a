package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusAdapter struct {
	requestDuration    *prometheus.HistogramVec
	requestsTotal      *prometheus.CounterVec
	completionsTotal   prometheus.Counter
	mileageAccepted    prometheus.Counter
	mileageRateLimited prometheus.Counter
}

func NewPrometheusAdapter() *PrometheusAdapter {
	return &PrometheusAdapter{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		completionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maintenance_completions_total",
			Help: "Maintenance completion events recorded.",
		}),
		mileageAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mileage_updates_accepted_total",
			Help: "Mileage ledger entries accepted.",
		}),
		mileageRateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mileage_updates_rate_limited_total",
			Help: "Mileage updates rejected by the cooldown.",
		}),
	}
}

func (p *PrometheusAdapter) RecordMetrics(c *gin.Context, start time.Time) {
	status := strconv.Itoa(c.Writer.Status())
	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	p.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	p.requestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
}

func (p *PrometheusAdapter) CompletionRecorded() {
	p.completionsTotal.Inc()
}

func (p *PrometheusAdapter) MileageAccepted() {
	p.mileageAccepted.Inc()
}

func (p *PrometheusAdapter) MileageRateLimited() {
	p.mileageRateLimited.Inc()
}
