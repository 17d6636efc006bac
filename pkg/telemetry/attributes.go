package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	// Flow network
	AttrGraphNodes    = "graph.nodes"
	AttrGraphEdges    = "graph.edges"
	AttrGraphSourceID = "graph.source_id"
	AttrGraphSinkID   = "graph.sink_id"

	// Solver
	AttrAlgorithm  = "algorithm.name"
	AttrIterations = "algorithm.iterations"
	AttrTotalFlow  = "algorithm.total_flow"
	AttrTotalCost  = "algorithm.total_cost"

	// Validation
	AttrValidationLevel  = "validation.level"
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"

	// Fairness
	AttrMinPaperMean   = "fairness.min_paper_mean"
	AttrBvNRounds      = "fairness.bvn_rounds"
	AttrForbiddenEdges = "fairness.forbidden_edges"
)

func GraphAttributes(nodes, edges int, sourceID, sinkID int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
		attribute.Int64(AttrGraphSourceID, sourceID),
		attribute.Int64(AttrGraphSinkID, sinkID),
	}
}

func AlgorithmAttributes(name string, iterations int, totalFlow, totalCost float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, name),
		attribute.Int(AttrIterations, iterations),
		attribute.Float64(AttrTotalFlow, totalFlow),
		attribute.Float64(AttrTotalCost, totalCost),
	}
}

func ValidationAttributes(level string, errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrValidationLevel, level),
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}
