package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet_report"

var (
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Requests sent to the analytics API by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of analytics API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	SourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Upstream sources that degraded to an empty record.",
	}, []string{"source"})

	Reports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_total",
		Help:      "Generated reports by overall risk level.",
	}, []string{"risk_level"})

	NarrativeRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "narrative_requests_total",
		Help:      "Calls to the narrative generator by provider and outcome.",
	}, []string{"provider", "outcome"})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(UpstreamRequests, UpstreamDuration, SourceFailures, Reports, NarrativeRequests)
	})
}
