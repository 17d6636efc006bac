package randomized

import (
	"context"

	"reviewmatch/pkg/assign"
	"reviewmatch/pkg/assign/apperror"
)

// Options configures the Randomized+BvN solver. Seed is the only solver
// parameter across the package that callers must supply explicitly: every
// other solver is fully deterministic, but the BvN decomposition samples
// a direction at each cancellation step.
type Options struct {
	Seed uint64
}

// Solve builds the LP relaxation over p's free pairs, solves it, and then
// rounds the fractional solution to an integral assignment via BvN-style
// dependent rounding seeded by opts.Seed.
func Solve(ctx context.Context, p *assign.Problem, opts Options) assign.SolveResult {
	select {
	case <-ctx.Done():
		return assign.SolveResult{Err: apperror.New(apperror.CodeCancelled, "randomized solve cancelled")}
	default:
	}

	if err := p.CheckLockedQuotas(); err != nil {
		return assign.SolveResult{Err: err}
	}

	lpSol, err := solveLP(p)
	if err != nil {
		return assign.SolveResult{Err: err}
	}

	select {
	case <-ctx.Done():
		return assign.SolveResult{Err: apperror.New(apperror.CodeCancelled, "randomized solve cancelled")}
	default:
	}

	integral, rounds, err := decompose(ctx, lpSol.X, p.NumPapers(), p.NumReviewers(), opts.Seed)
	if err != nil {
		return assign.SolveResult{Diagnostics: map[string]any{"bvn_rounds": rounds}, Err: err}
	}

	var assignments []assign.Assignment
	var totalScore float64
	for i := 0; i < p.NumPapers(); i++ {
		for j := 0; j < p.NumReviewers(); j++ {
			if integral.At(i, j) < 0.5 {
				continue
			}
			score := p.Score.At(i, j)
			assignments = append(assignments, assign.Assignment{
				PaperIdx:    i,
				ReviewerIdx: j,
				PaperID:     p.PaperIDs[i],
				ReviewerID:  p.ReviewerIDs[j],
				Score:       score,
			})
			totalScore += score
		}
	}

	diagnostics := map[string]any{
		"lp_objective": lpSol.Objective,
		"bvn_rounds":   rounds,
		"seed":         opts.Seed,
	}

	if err := checkQuotas(p, assignments); err != nil {
		return assign.SolveResult{Diagnostics: diagnostics, Err: err}
	}

	return assign.SolveResult{
		Assignments: assignments,
		Alternates:  assign.RankAlternates(p, assignments),
		TotalScore:  totalScore,
		Diagnostics: diagnostics,
	}
}

// checkQuotas reports CodeInfeasibleQuota if the rounded assignment
// violates any minimum or maximum, which can happen when the LP relaxation itself
// was only feasible at fractional quotas that rounding cannot preserve
// exactly for every row and column simultaneously.
func checkQuotas(p *assign.Problem, assignments []assign.Assignment) error {
	reviewerCount := make([]int, p.NumPapers())
	paperCount := make([]int, p.NumReviewers())
	for _, a := range assignments {
		reviewerCount[a.PaperIdx]++
		paperCount[a.ReviewerIdx]++
	}
	for i, c := range reviewerCount {
		if c < p.MinReviewers[i] || c > p.MaxReviewers[i] {
			return apperror.New(apperror.CodeInfeasibleQuota, "rounded assignment violates a paper's reviewer quota")
		}
	}
	for j, c := range paperCount {
		if c < p.MinPapers[j] || c > p.MaxPapers[j] {
			return apperror.New(apperror.CodeInfeasibleQuota, "rounded assignment violates a reviewer's paper quota")
		}
	}
	return nil
}
