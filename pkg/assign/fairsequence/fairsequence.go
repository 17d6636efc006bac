// Package fairsequence implements the FairSequence solver: a greedy
// sequential allocator that targets weighted envy-freeness up to one item
// (WEF1) by always giving the next reviewer to whichever paper currently
// has the lowest priority, where priority is the fraction of its max
// reviewer demand already filled.
package fairsequence

import (
	"context"
	"sort"

	"reviewmatch/pkg/assign"
	"reviewmatch/pkg/assign/apperror"
	"reviewmatch/pkg/domain"
)

// Solve runs the greedy priority-sequential allocation followed by a
// minimum-enforcement swap pass. It never uses randomness; ties are
// broken deterministically by ascending id.
func Solve(ctx context.Context, p *assign.Problem) assign.SolveResult {
	if err := p.CheckLockedQuotas(); err != nil {
		return assign.SolveResult{Err: err}
	}

	numPapers, numReviewers := p.NumPapers(), p.NumReviewers()

	allocated := make([][]bool, numPapers)
	for i := range allocated {
		allocated[i] = make([]bool, numReviewers)
	}
	reviewerLoad := make([]int, numReviewers)
	paperCount := make([]int, numPapers)

	// Locked pairs are pre-committed, exactly like the flow-based
	// solvers, so the greedy loop below only ever reasons about free
	// capacity.
	for i := 0; i < numPapers; i++ {
		for j := 0; j < numReviewers; j++ {
			if p.Constraint[i][j] == assign.ConstraintLocked {
				allocated[i][j] = true
				reviewerLoad[j]++
				paperCount[i]++
			}
		}
	}

	picks := 0
	for {
		if picks%256 == 0 {
			select {
			case <-ctx.Done():
				return assign.SolveResult{Err: apperror.New(apperror.CodeCancelled, "fairsequence solve cancelled")}
			default:
			}
		}

		paperIdx, reviewerIdx, ok := pickNext(p, allocated, reviewerLoad, paperCount)
		if !ok {
			break
		}
		allocated[paperIdx][reviewerIdx] = true
		reviewerLoad[reviewerIdx]++
		paperCount[paperIdx]++
		picks++
	}

	if err := enforceMinimums(p, allocated, reviewerLoad, paperCount); err != nil {
		return assign.SolveResult{Err: err}
	}

	var assignments []assign.Assignment
	var totalScore float64
	for i := 0; i < numPapers; i++ {
		for j := 0; j < numReviewers; j++ {
			if !allocated[i][j] {
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
	sort.Slice(assignments, func(a, b int) bool {
		if assignments[a].PaperIdx != assignments[b].PaperIdx {
			return assignments[a].PaperIdx < assignments[b].PaperIdx
		}
		return assignments[a].ReviewerIdx < assignments[b].ReviewerIdx
	})

	return assign.SolveResult{
		Assignments: assignments,
		Alternates:  assign.RankAlternates(p, assignments),
		TotalScore:  totalScore,
		Diagnostics: map[string]any{"picks": picks},
	}
}

// pickNext finds the eligible paper with the lowest priority
// (|current allocation| / max_reviewers), breaking ties by higher max
// affinity available then ascending paper id, and returns its best
// reviewer pick (highest affinity, ascending id on ties).
func pickNext(p *assign.Problem, allocated [][]bool, reviewerLoad, paperCount []int) (paperIdx, reviewerIdx int, ok bool) {
	numPapers, numReviewers := p.NumPapers(), p.NumReviewers()

	bestPaper := -1
	bestPriority := domain.Infinity
	bestMaxAffinity := domain.NegativeInfinity

	for i := 0; i < numPapers; i++ {
		if paperCount[i] >= p.MaxReviewers[i] {
			continue
		}
		maxAffinity := domain.NegativeInfinity
		eligible := false
		for j := 0; j < numReviewers; j++ {
			if !eligibleReviewer(p, allocated, reviewerLoad, i, j) {
				continue
			}
			eligible = true
			if s := p.Score.At(i, j); s > maxAffinity {
				maxAffinity = s
			}
		}
		if !eligible {
			continue
		}

		priority := float64(paperCount[i]) / float64(p.MaxReviewers[i])
		switch {
		case domain.FloatLess(priority, bestPriority):
			bestPaper, bestPriority, bestMaxAffinity = i, priority, maxAffinity
		case domain.FloatEquals(priority, bestPriority):
			if domain.FloatGreater(maxAffinity, bestMaxAffinity) {
				bestPaper, bestMaxAffinity = i, maxAffinity
			}
		}
	}

	if bestPaper == -1 {
		return 0, 0, false
	}

	bestReviewer := -1
	bestScore := domain.NegativeInfinity
	for j := 0; j < numReviewers; j++ {
		if !eligibleReviewer(p, allocated, reviewerLoad, bestPaper, j) {
			continue
		}
		s := p.Score.At(bestPaper, j)
		if domain.FloatGreater(s, bestScore) {
			bestReviewer, bestScore = j, s
		}
	}

	return bestPaper, bestReviewer, true
}

func eligibleReviewer(p *assign.Problem, allocated [][]bool, reviewerLoad []int, paperIdx, reviewerIdx int) bool {
	if allocated[paperIdx][reviewerIdx] {
		return false
	}
	if p.Constraint[paperIdx][reviewerIdx] == assign.ConstraintConflict {
		return false
	}
	if reviewerLoad[reviewerIdx] >= p.MaxPapers[reviewerIdx] {
		return false
	}
	return true
}

// enforceMinimums runs the second pass required by the allocator: any
// paper still below its minimum pulls a reviewer away from a paper
// strictly above its own minimum, preferring the swap that costs the
// least total affinity. A paper that cannot be brought up to its
// minimum this way makes the whole solve Infeasible.
func enforceMinimums(p *assign.Problem, allocated [][]bool, reviewerLoad, paperCount []int) error {
	numPapers, numReviewers := p.NumPapers(), p.NumReviewers()

	for i := 0; i < numPapers; i++ {
		for paperCount[i] < p.MinReviewers[i] {
			swapped := false

			bestDonor, bestReviewer := -1, -1
			bestLoss := domain.Infinity

			for j := 0; j < numReviewers; j++ {
				if allocated[i][j] || p.Constraint[i][j] == assign.ConstraintConflict {
					continue
				}
				for d := 0; d < numPapers; d++ {
					if d == i || !allocated[d][j] {
						continue
					}
					if paperCount[d] <= p.MinReviewers[d] {
						continue
					}
					loss := p.Score.At(d, j) - p.Score.At(i, j)
					if loss < bestLoss || (domain.FloatEquals(loss, bestLoss) && (d < bestDonor || (d == bestDonor && j < bestReviewer))) {
						bestDonor, bestReviewer, bestLoss = d, j, loss
					}
				}
			}

			if bestDonor != -1 {
				allocated[bestDonor][bestReviewer] = false
				allocated[i][bestReviewer] = true
				paperCount[bestDonor]--
				paperCount[i]++
				swapped = true
			}

			if !swapped {
				return apperror.New(apperror.CodeInfeasibleSwap,
					"fairsequence could not raise every paper to its minimum via swaps")
			}
		}
	}
	return nil
}
