package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "risk_engine"

var (
	// EngineRuns counts engine invocations.
	// Labels: engine (analyze, cascade, stress, weakpoint, traffic, timeline), outcome (ok, invalid, error)
	EngineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "runs_total",
		Help:      "Total engine runs by engine and outcome",
	}, []string{"engine", "outcome"})

	// EngineDuration measures wall time spent inside an engine call.
	EngineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "duration_seconds",
		Help:      "Engine run duration in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"engine"})

	// GraphSize tracks the node count of analyzed diagrams.
	GraphSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "graph_nodes",
		Help:      "Number of nodes in analyzed diagrams",
		Buckets:   []float64{1, 5, 10, 20, 50, 100, 200},
	})

	// RiskScore records the composite score of each analysis.
	RiskScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "risk_score",
		Help:      "Distribution of composite risk scores",
		Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	// AdvisorCalls counts advisory calls.
	// Labels: outcome (ok, disabled, rate_limited, breaker_open, error, unparsed)
	AdvisorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "advisor",
		Name:      "calls_total",
		Help:      "Total advisory calls by outcome",
	}, []string{"outcome"})

	// HTTPRequests counts served requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// RateLimited counts requests rejected by the limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Total requests rejected by the rate limiter",
	})
)

// ObserveEngine records one engine run started at start.
func ObserveEngine(engine, outcome string, start time.Time) {
	EngineRuns.WithLabelValues(engine, outcome).Inc()
	EngineDuration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
}
