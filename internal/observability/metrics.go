// Package observability wires the prometheus registry and the counters the
// domain services report into.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Provide(NewMetrics)

type Metrics struct {
	Registry *prometheus.Registry

	UtterancesTotal  *prometheus.CounterVec
	PairingConflicts prometheus.Counter
	SweeperClosed    prometheus.Counter
	SweeperFailures  prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: registry,
		UtterancesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "utterances_total",
			Help:      "Submitted utterances by pipeline outcome.",
		}, []string{"outcome"}),
		PairingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "pairing_conflicts_total",
			Help:      "Lost races for a waiting conversation slot.",
		}),
		SweeperClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "sweeper_closed_sessions_total",
			Help:      "Sessions closed by the expiry sweeper.",
		}),
		SweeperFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "sweeper_failures_total",
			Help:      "Sweeper iterations that ended with an error.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "parley",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		m.UtterancesTotal,
		m.PairingConflicts,
		m.SweeperClosed,
		m.SweeperFailures,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}
