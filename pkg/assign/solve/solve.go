// Package solve dispatches a Problem to one of the four solver
// implementations behind a single tagged-variant contract, the way a
// caller that only knows which solver name it was asked for, not which
// package to import, would expect to call this core.
package solve

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"reviewmatch/pkg/assign"
	"reviewmatch/pkg/assign/apperror"
	"reviewmatch/pkg/assign/fairflow"
	"reviewmatch/pkg/assign/fairsequence"
	"reviewmatch/pkg/assign/minmax"
	"reviewmatch/pkg/assign/randomized"
	"reviewmatch/pkg/logger"
	"reviewmatch/pkg/telemetry"
)

// SolverKind names one of the four interchangeable solvers.
type SolverKind string

const (
	MinMax       SolverKind = "MinMax"
	FairFlow     SolverKind = "FairFlow"
	Randomized   SolverKind = "Randomized"
	FairSequence SolverKind = "FairSequence"
)

// Options bundles every parameter a solver might need. FairFlowOptions
// and Seed are only consulted by the matching SolverKind. A zero
// FairFlowOptions.MaxIterations falls back to fairflow.DefaultOptions();
// Seed is passed to the randomized solver as given, including 0.
type Options struct {
	FairFlowOptions fairflow.Options
	Seed            uint64
}

// Solve dispatches to the requested solver, wrapping the whole call in a
// tracing span so every variant is observable the same way regardless of
// which kernel actually ran.
func Solve(ctx context.Context, p *assign.Problem, kind SolverKind, opts Options) assign.SolveResult {
	solveID := uuid.NewString()
	log := logger.WithSolveID(solveID)

	ctx, span := telemetry.StartSpan(ctx, "assign.Solve")
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrAlgorithm, string(kind)))

	log.Info("solve started", "solver", string(kind), "papers", p.NumPapers(), "reviewers", p.NumReviewers())

	var result assign.SolveResult
	switch kind {
	case MinMax:
		result = minmax.Solve(ctx, p)
	case FairFlow:
		ffOpts := opts.FairFlowOptions
		if ffOpts.MaxIterations == 0 {
			ffOpts = fairflow.DefaultOptions()
		}
		result = fairflow.Solve(ctx, p, ffOpts)
	case Randomized:
		result = randomized.Solve(ctx, p, randomized.Options{Seed: opts.Seed})
	case FairSequence:
		result = fairsequence.Solve(ctx, p)
	default:
		result = assign.SolveResult{Err: apperror.NewWithField(apperror.CodeNilInput, "unknown solver kind", "solver")}
	}

	if result.Diagnostics == nil {
		result.Diagnostics = make(map[string]any)
	}
	result.Diagnostics["solve_id"] = solveID

	if result.Err != nil {
		telemetry.SetError(ctx, result.Err)
		log.Error("solve failed", "error", result.Err)
	} else {
		span.SetAttributes(attribute.Float64(telemetry.AttrTotalFlow, result.TotalScore))
		log.Info("solve complete", "total_score", result.TotalScore, "assignments", len(result.Assignments))
	}
	return result
}
