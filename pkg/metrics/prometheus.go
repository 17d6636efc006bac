package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the process-wide container of solve instrumentation. There is
// no HTTP server here: an embedding service registers these collectors
// with its own /metrics exposition; this package only defines and updates
// them.
type Metrics struct {
	SolveOperationsTotal *prometheus.CounterVec
	SolveDuration        *prometheus.HistogramVec
	TotalFlowValue       *prometheus.GaugeVec
	GraphNodesTotal      *prometheus.HistogramVec
	GraphEdgesTotal      *prometheus.HistogramVec
	FairFlowIterations   *prometheus.HistogramVec
	BvNRounds            prometheus.Histogram

	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		SolveOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_operations_total",
				Help:      "Total number of solve operations",
			},
			[]string{"solver", "status"},
		),

		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of solve operations",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"solver"},
		),

		TotalFlowValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "total_flow_value",
				Help:      "Last computed total flow value (assigned review slots)",
			},
			[]string{"solver"},
		),

		GraphNodesTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes_total",
				Help:      "Number of nodes in built flow networks",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"phase"},
		),

		GraphEdgesTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges_total",
				Help:      "Number of edges in built flow networks",
				Buckets:   []float64{20, 100, 500, 1000, 5000, 10000, 50000, 100000},
			},
			[]string{"phase"},
		),

		FairFlowIterations: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fairflow_iterations",
				Help:      "Number of edge-forbidding iterations FairFlow ran",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"outcome"},
		),

		BvNRounds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bvn_decomposition_rounds",
				Help:      "Number of cycle/path extraction rounds in BvN decomposition",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
			},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("reviewmatch", "")
	}
	return defaultMetrics
}

func (m *Metrics) RecordSolveOperation(solver string, success bool, duration time.Duration, totalFlow float64) {
	status := "success"
	if !success {
		status = "error"
	}

	m.SolveOperationsTotal.WithLabelValues(solver, status).Inc()
	m.SolveDuration.WithLabelValues(solver).Observe(duration.Seconds())
	m.TotalFlowValue.WithLabelValues(solver).Set(totalFlow)
}

func (m *Metrics) RecordGraphSize(phase string, nodes, edges int) {
	m.GraphNodesTotal.WithLabelValues(phase).Observe(float64(nodes))
	m.GraphEdgesTotal.WithLabelValues(phase).Observe(float64(edges))
}

func (m *Metrics) RecordFairFlowIterations(outcome string, iterations int) {
	m.FairFlowIterations.WithLabelValues(outcome).Observe(float64(iterations))
}

func (m *Metrics) RecordBvNRounds(rounds int) {
	m.BvNRounds.Observe(float64(rounds))
}

func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}
