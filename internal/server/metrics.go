package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus collectors exported by the API.
type Metrics struct {
	Requests        *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	RateLimited     *prometheus.CounterVec
	MalformedChains *prometheus.CounterVec
	StoreRecords    prometheus.Gauge
	StoreCustomers  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests served, by route and status code",
			},
			[]string{"method", "route", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limiter_blocked_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
		MalformedChains: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "malformed_chains_total",
				Help: "Authorization-code groups that did not form a clean chain",
			},
			[]string{"reason"},
		),
		StoreRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "store_records",
			Help: "Transaction records held in the snapshot",
		}),
		StoreCustomers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "store_customers",
			Help: "Distinct customers held in the snapshot",
		}),
	}

	reg.MustRegister(m.Requests, m.Duration, m.RateLimited, m.MalformedChains, m.StoreRecords, m.StoreCustomers)
	return m
}
