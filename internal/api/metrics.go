package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opListMeters  = "list_meters"
	opAreas       = "areas"
	opDeleteMeter = "delete_meter"

	outcomeOK        = "ok"
	outcomeTransport = "transport"
	outcomeStatus    = "status"
	outcomeMalformed = "malformed"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meters_upstream_requests_total",
			Help: "Total number of calls made to the upstream meters API.",
		},
		[]string{"op", "outcome"},
	)
	upstreamDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meters_upstream_duration_seconds",
			Help:    "Upstream meters API latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	upstreamMalformedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meters_upstream_malformed_total",
			Help: "Decoded upstream responses that lacked a results array.",
		},
		[]string{"op"},
	)
)

func observeUpstream(op, outcome string, dur time.Duration) {
	upstreamRequestsTotal.WithLabelValues(op, outcome).Inc()
	upstreamDurationSeconds.WithLabelValues(op).Observe(dur.Seconds())
}

func observeMalformed(op string) {
	upstreamMalformedTotal.WithLabelValues(op).Inc()
}
