// Package fairflow implements the FairFlow solver: starting from a
// MinMax solution, it repeatedly forbids the weakest edge of the
// currently worst-off paper and re-solves, keeping each forbid only when
// it improves the lexicographic objective (minimum per-paper mean
// affinity first, total affinity second) without breaking feasibility.
package fairflow

import (
	"context"
	"sort"

	"reviewmatch/pkg/assign"
	"reviewmatch/pkg/assign/apperror"
	"reviewmatch/pkg/assign/minmax"
	"reviewmatch/pkg/domain"
)

// Options bounds how many forbid/re-solve trials FairFlow will attempt.
type Options struct {
	MaxIterations int
}

func DefaultOptions() Options {
	return Options{MaxIterations: 1000}
}

// key is the lexicographic objective FairFlow maximizes: the minimum
// per-paper mean affinity across every paper with at least one assigned
// reviewer (papers with none are left out), then total affinity as a
// tiebreak.
type key struct {
	minPaperMean float64
	totalScore   float64
}

func (k key) betterThan(other key) bool {
	if domain.FloatGreater(k.minPaperMean, other.minPaperMean) {
		return true
	}
	if domain.FloatLess(k.minPaperMean, other.minPaperMean) {
		return false
	}
	return domain.FloatGreater(k.totalScore, other.totalScore)
}

func evaluate(p *assign.Problem, assignments []assign.Assignment) key {
	sums := make([]float64, p.NumPapers())
	counts := make([]int, p.NumPapers())
	var total float64
	for _, a := range assignments {
		sums[a.PaperIdx] += a.Score
		counts[a.PaperIdx]++
		total += a.Score
	}
	minMean := domain.Infinity
	for i, c := range counts {
		if c == 0 {
			continue
		}
		mean := sums[i] / float64(c)
		if mean < minMean {
			minMean = mean
		}
	}
	if minMean == domain.Infinity {
		minMean = 0
	}
	return key{minPaperMean: minMean, totalScore: total}
}

// Solve runs the FairFlow loop. opts.MaxIterations bounds the number of
// forbid/re-solve trials; a run that exhausts it without every paper
// saturated still returns its best accepted solution so far.
func Solve(ctx context.Context, p *assign.Problem, opts Options) assign.SolveResult {
	constraint := cloneConstraint(p.Constraint)
	working := &assign.Problem{
		PaperIDs:     p.PaperIDs,
		ReviewerIDs:  p.ReviewerIDs,
		Score:        p.Score,
		MinReviewers: p.MinReviewers,
		MaxReviewers: p.MaxReviewers,
		MinPapers:    p.MinPapers,
		MaxPapers:    p.MaxPapers,
		Constraint:   constraint,
		ProbLimit:    p.ProbLimit,
	}

	current := minmax.Solve(ctx, working)
	if current.Err != nil {
		return current
	}
	currentKey := evaluate(p, current.Assignments)

	saturated := make([]bool, p.NumPapers())
	iterations := 0

	for iterations < opts.MaxIterations {
		select {
		case <-ctx.Done():
			current.Diagnostics["fairflow_iterations"] = iterations
			current.Err = apperror.New(apperror.CodeCancelled, "fairflow solve cancelled")
			return current
		default:
		}

		paperIdx, reviewerIdx, ok := pickTrialEdge(working, current.Assignments, saturated)
		if !ok {
			break
		}
		iterations++

		trialConstraint := cloneConstraint(constraint)
		trialConstraint[paperIdx][reviewerIdx] = assign.ConstraintConflict
		trial := &assign.Problem{
			PaperIDs:     p.PaperIDs,
			ReviewerIDs:  p.ReviewerIDs,
			Score:        p.Score,
			MinReviewers: p.MinReviewers,
			MaxReviewers: p.MaxReviewers,
			MinPapers:    p.MinPapers,
			MaxPapers:    p.MaxPapers,
			Constraint:   trialConstraint,
			ProbLimit:    p.ProbLimit,
		}

		trialResult := minmax.Solve(ctx, trial)
		if trialResult.Err != nil {
			// Forbidding this edge broke feasibility or was cancelled;
			// keep the accepted constraints and mark the paper saturated,
			// so no further trial is attempted on it.
			if apperror.IsCancelled(trialResult.Err) {
				current.Diagnostics["fairflow_iterations"] = iterations
				current.Err = trialResult.Err
				return current
			}
			saturated[paperIdx] = true
			continue
		}

		trialKey := evaluate(p, trialResult.Assignments)
		if trialKey.betterThan(currentKey) {
			constraint = trialConstraint
			working.Constraint = constraint
			current = trialResult
			currentKey = trialKey
		} else {
			saturated[paperIdx] = true
		}
	}

	current.Diagnostics["fairflow_iterations"] = iterations
	current.Diagnostics["min_paper_mean"] = currentKey.minPaperMean
	current.Alternates = assign.RankAlternates(p, current.Assignments)
	return current
}

// pickTrialEdge finds the paper with the lowest current mean affinity
// that is not yet saturated, and returns its lowest-scoring assigned
// edge as the next one to try forbidding.
func pickTrialEdge(p *assign.Problem, assignments []assign.Assignment, saturated []bool) (paperIdx, reviewerIdx int, ok bool) {
	byPaper := make(map[int][]assign.Assignment)
	for _, a := range assignments {
		byPaper[a.PaperIdx] = append(byPaper[a.PaperIdx], a)
	}

	type paperMean struct {
		paperIdx int
		mean     float64
	}
	var candidates []paperMean
	for idx, list := range byPaper {
		if saturated[idx] || len(list) == 0 {
			continue
		}
		var sum float64
		for _, a := range list {
			sum += a.Score
		}
		candidates = append(candidates, paperMean{idx, sum / float64(len(list))})
	}
	if len(candidates) == 0 {
		return 0, 0, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].mean != candidates[j].mean {
			return candidates[i].mean < candidates[j].mean
		}
		return candidates[i].paperIdx < candidates[j].paperIdx
	})

	for _, c := range candidates {
		list := byPaper[c.paperIdx]
		sort.Slice(list, func(i, j int) bool {
			if list[i].Score != list[j].Score {
				return list[i].Score < list[j].Score
			}
			return list[i].ReviewerIdx < list[j].ReviewerIdx
		})
		for _, a := range list {
			if p.Constraint[c.paperIdx][a.ReviewerIdx] == assign.ConstraintLocked {
				continue
			}
			return c.paperIdx, a.ReviewerIdx, true
		}
		saturated[c.paperIdx] = true
	}
	return 0, 0, false
}

func cloneConstraint(c [][]int8) [][]int8 {
	out := make([][]int8, len(c))
	for i, row := range c {
		out[i] = append([]int8(nil), row...)
	}
	return out
}
