// Package instrument holds the Prometheus collectors of the service.
// Collectors are registered on the default registry through promauto and
// exposed by promhttp on /metrics.
package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesTotal counts finished analyses by outcome: ok, empty, invalid, error
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkgraph_analyses_total",
			Help: "Total number of analysis requests processed",
		},
		[]string{"outcome"},
	)

	// StageDuration measures each engine stage
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkgraph_stage_duration_seconds",
			Help:    "Duration of analysis stages in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"stage"},
	)

	// GraphNodes and GraphEdges record the size of every built graph
	GraphNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkgraph_graph_nodes",
			Help:    "Number of nodes in analysed graphs",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	GraphEdges = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkgraph_graph_edges",
			Help:    "Number of edges in analysed graphs",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// LayoutTruncations counts layouts cut short by a timeout or cancellation
	LayoutTruncations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkgraph_layout_truncations_total",
			Help: "Total number of layouts returned before convergence",
		},
		[]string{"algorithm"},
	)

	// HTTPRequestsTotal counts requests by method, route and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkgraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures server response time
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Outcome labels of AnalysesTotal
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Stage labels of StageDuration
const (
	StageNormalize = "normalize"
	StageBuild     = "build"
	StageMetrics   = "metrics"
	StageLayout    = "layout"
	StageAssemble  = "assemble"
)
