// Package metrics registers the prometheus instruments for the submission
// pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds pipeline counters and histograms.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	SinkDeliveriesTotal *prometheus.CounterVec
	FileUploadsTotal   *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heysheet_submissions_total",
			Help: "Submission outcomes by result (accepted, rejected reason, persist_error).",
		}, []string{"outcome"}),
		SinkDeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heysheet_sink_deliveries_total",
			Help: "Per-sink delivery outcomes.",
		}, []string{"sink", "outcome"}),
		FileUploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heysheet_file_uploads_total",
			Help: "File upload outcomes.",
		}, []string{"outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "heysheet_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	reg.MustRegister(
		m.SubmissionsTotal,
		m.SinkDeliveriesTotal,
		m.FileUploadsTotal,
		m.RequestDuration,
	)
	return m
}

func (m *Metrics) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSinkDelivery(sink, outcome string) {
	if m == nil {
		return
	}
	m.SinkDeliveriesTotal.WithLabelValues(sink, outcome).Inc()
}

func (m *Metrics) RecordFileUpload(outcome string) {
	if m == nil {
		return
	}
	m.FileUploadsTotal.WithLabelValues(outcome).Inc()
}

// GinMiddleware records request latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.RequestDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
