// Package minmax implements the MinMax solver: a single min-cost
// max-flow solve over the mandatory/optional bipartite network that
// maximizes total affinity subject to every hard quota.
package minmax

import (
	"context"

	"reviewmatch/pkg/assign"
	"reviewmatch/pkg/assign/apperror"
	"reviewmatch/pkg/assign/flow"
)

// Solve runs one min-cost max-flow pass over p's flow network and
// returns the resulting assignment, or an Infeasible/Cancelled error.
func Solve(ctx context.Context, p *assign.Problem) assign.SolveResult {
	if err := p.CheckLockedQuotas(); err != nil {
		return assign.SolveResult{Err: err}
	}

	spec := p.NetworkSpec()
	net, canceled := flow.BuildNetwork(ctx, spec)
	if canceled {
		return assign.SolveResult{Err: apperror.New(apperror.CodeCancelled, "minmax solve cancelled")}
	}

	result := flow.SuccessiveShortestPath(ctx, net.Graph, net.Source, net.Sink, net.TargetFlow)
	diagnostics := map[string]any{
		"iterations": result.Iterations,
		"flow":       result.Flow,
	}

	if result.Canceled {
		return assign.SolveResult{Diagnostics: diagnostics, Err: apperror.New(apperror.CodeCancelled, "minmax solve cancelled")}
	}
	if !net.MandatorySaturated() {
		return assign.SolveResult{
			Diagnostics: diagnostics,
			Err:         apperror.New(apperror.CodeInfeasibleQuota, "minmax could not saturate every minimum quota"),
		}
	}

	pairs := net.Assignment(spec)
	assignments := make([]assign.Assignment, 0, len(pairs))
	var totalScore float64
	for _, pr := range pairs {
		paperIdx, reviewerIdx := pr[0], pr[1]
		score := p.Score.At(paperIdx, reviewerIdx)
		assignments = append(assignments, assign.Assignment{
			PaperIdx:    paperIdx,
			ReviewerIdx: reviewerIdx,
			PaperID:     p.PaperIDs[paperIdx],
			ReviewerID:  p.ReviewerIDs[reviewerIdx],
			Score:       score,
		})
		totalScore += score
	}

	return assign.SolveResult{
		Assignments: assignments,
		Alternates:  assign.RankAlternates(p, assignments),
		TotalScore:  totalScore,
		Diagnostics: diagnostics,
	}
}
