// Package assign defines the paper/reviewer assignment problem model and
// the shared result types every solver (minmax, fairflow, randomized,
// fairsequence) returns.
package assign

import (
	"gonum.org/v1/gonum/mat"

	"reviewmatch/pkg/assign/apperror"
	"reviewmatch/pkg/assign/flow"
)

// Constraint values for one (paper, reviewer) cell.
const (
	ConstraintConflict int8 = -1
	ConstraintFree     int8 = 0
	ConstraintLocked   int8 = 1
)

// Problem is the validated input to every solver: papers and reviewers
// addressed by 0-based index internally, with external ids carried only
// for output labeling.
type Problem struct {
	PaperIDs    []string
	ReviewerIDs []string

	// Score is NumPapers x NumReviewers, the effective combined affinity.
	Score *mat.Dense

	MinReviewers, MaxReviewers []int // len NumPapers
	MinPapers, MaxPapers       []int // len NumReviewers

	// Constraint is NumPapers x NumReviewers, values in {-1,0,1}.
	Constraint [][]int8

	// ProbLimit is NumPapers x NumReviewers, values in [0,1]. Only
	// consulted by the randomized solver; nil otherwise.
	ProbLimit *mat.Dense

	// NumAlternates caps how many backup reviewers RankAlternates records
	// per paper; 0 means none are requested.
	NumAlternates int
}

func (p *Problem) NumPapers() int    { return len(p.PaperIDs) }
func (p *Problem) NumReviewers() int { return len(p.ReviewerIDs) }

// CheckLockedQuotas reports CodeInfeasibleQuota if p's locked pairs alone
// overrun some paper's max_reviewers or some reviewer's max_papers. Build
// already rejects this at construction time, but every solver accepts a
// bare *Problem as its entry point, so each one calls this rather than
// trust that every caller went through Build.
func (p *Problem) CheckLockedQuotas() error {
	lockedPerPaper := make([]int, p.NumPapers())
	lockedPerReviewer := make([]int, p.NumReviewers())
	for i, row := range p.Constraint {
		for j, c := range row {
			if c != ConstraintLocked {
				continue
			}
			lockedPerPaper[i]++
			lockedPerReviewer[j]++
		}
	}
	for i, c := range lockedPerPaper {
		if c > p.MaxReviewers[i] {
			return apperror.New(apperror.CodeInfeasibleQuota, "locked pairs alone exceed a paper's max_reviewers")
		}
	}
	for j, c := range lockedPerReviewer {
		if c > p.MaxPapers[j] {
			return apperror.New(apperror.CodeInfeasibleQuota, "locked pairs alone exceed a reviewer's max_papers")
		}
	}
	return nil
}

// ScoreRows returns Score as a [][]float64 for callers (flow.NetworkSpec,
// the LP builder) that want plain slices rather than a gonum matrix.
func (p *Problem) ScoreRows() [][]float64 {
	rows := make([][]float64, p.NumPapers())
	for i := range rows {
		rows[i] = make([]float64, p.NumReviewers())
		for j := range rows[i] {
			rows[i][j] = p.Score.At(i, j)
		}
	}
	return rows
}

// NetworkSpec adapts p into the flow package's plain bipartite network
// description, shared by FeasibilityCheck and every flow-based solver.
func (p *Problem) NetworkSpec() flow.NetworkSpec {
	return flow.NetworkSpec{
		NumPapers:    p.NumPapers(),
		NumReviewers: p.NumReviewers(),
		Score:        p.ScoreRows(),
		Constraint:   p.Constraint,
		MinReviewers: p.MinReviewers,
		MaxReviewers: p.MaxReviewers,
		MinPapers:    p.MinPapers,
		MaxPapers:    p.MaxPapers,
	}
}

// Assignment is one committed (paper, reviewer) pairing.
type Assignment struct {
	PaperIdx, ReviewerIdx int
	PaperID, ReviewerID   string
	Score                 float64
}

// AlternateEntry is one ranked non-assigned, non-conflicted reviewer for
// a paper, ordered by descending score then ascending reviewer index.
type AlternateEntry struct {
	PaperIdx, ReviewerIdx int
	PaperID, ReviewerID   string
	Score                 float64
	Rank                  int
}

// SolveResult is the shared output shape every solver in pkg/assign
// returns, whether it succeeded, failed feasibility, or was cancelled.
type SolveResult struct {
	Assignments []Assignment
	Alternates  []AlternateEntry
	TotalScore  float64
	Diagnostics map[string]any
	Err         error
}

// Status classifies a SolveResult's Err the way §7 describes: a nil Err
// means success, otherwise Code tells the caller which of the four kinds
// of failure occurred.
func (r SolveResult) Status() apperror.ErrorCode {
	if r.Err == nil {
		return ""
	}
	return apperror.Code(r.Err)
}
