package assign

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"reviewmatch/pkg/assign/apperror"
	"reviewmatch/pkg/assign/flow"
)

// BuildInput is the raw, unvalidated material a caller assembles before
// calling Build. Score, Constraint, and ProbLimit are read row-major as
// paper x reviewer.
//
// A caller combining several independent score sources (e.g. bid scores,
// subject-area affinity, past-co-authorship penalties) sets Scores and
// Weights instead of Score: Build computes the single effective matrix
// S(p,r) = sum_i Weights[i] * Scores[i][p][r] before validating anything
// else, the same weighted-sum-of-sources step every caller would otherwise
// have to duplicate. Weights may be negative to encode a penalty source.
// Score is ignored once Scores is non-empty.
type BuildInput struct {
	PaperIDs, ReviewerIDs       []string
	Score                       [][]float64
	Scores                      [][][]float64 // optional: multiple sources, combined via Weights
	Weights                     []float64     // len(Weights) == len(Scores)
	MinReviewers, MaxReviewers  []int
	MinPapers, MaxPapers        []int
	Constraint                  [][]int8
	ProbLimit                   [][]float64 // optional, nil if unused
	NumAlternates               int         // caps RankAlternates' output per paper
}

// CombineScores folds several per-source score matrices into one effective
// paper x reviewer matrix via S(p,r) = sum_i weights[i] * sources[i][p][r].
// A source matrix shorter than numPapers x numReviewers (a sparse source
// that only names some pairs) contributes 0 for any cell it omits, per
// spec's "missing entries in any source contribute 0".
func CombineScores(sources [][][]float64, weights []float64, numPapers, numReviewers int) [][]float64 {
	combined := make([][]float64, numPapers)
	for i := range combined {
		combined[i] = make([]float64, numReviewers)
	}
	for s, source := range sources {
		w := weights[s]
		for i := 0; i < numPapers && i < len(source); i++ {
			row := source[i]
			for j := 0; j < numReviewers && j < len(row); j++ {
				combined[i][j] += w * row[j]
			}
		}
	}
	return combined
}

// Build validates in and returns every error it accumulated, mirroring
// the accumulate-then-report pattern used throughout this module's error
// handling: every malformed field is collected so a caller troubleshooting
// a rejected Problem sees more than one symptom, and ValidationErrors.First
// gives the first one found. The returned *Problem is nil whenever any
// error was recorded.
func Build(in BuildInput) (*Problem, *apperror.ValidationErrors) {
	ve := apperror.NewValidationErrors()

	numPapers := len(in.PaperIDs)
	numReviewers := len(in.ReviewerIDs)

	if len(in.Scores) > 0 {
		if len(in.Scores) != len(in.Weights) {
			ve.AddErrorWithField(apperror.CodeMalformedDimensions,
				fmt.Sprintf("%d score sources but %d weights", len(in.Scores), len(in.Weights)), "weights")
		} else {
			in.Score = CombineScores(in.Scores, in.Weights, numPapers, numReviewers)
		}
	}

	if numPapers == 0 {
		ve.AddErrorWithField(apperror.CodeMalformedDimensions, "no papers given", "paper_ids")
	}
	if numReviewers == 0 {
		ve.AddErrorWithField(apperror.CodeMalformedDimensions, "no reviewers given", "reviewer_ids")
	}
	if len(in.Score) != numPapers {
		ve.AddErrorWithField(apperror.CodeMalformedDimensions,
			fmt.Sprintf("score has %d rows, want %d", len(in.Score), numPapers), "score")
	}
	for i, row := range in.Score {
		if len(row) != numReviewers {
			ve.AddErrorWithField(apperror.CodeMalformedDimensions,
				fmt.Sprintf("score row %d has %d cols, want %d", i, len(row), numReviewers), "score")
			break
		}
	}
	if len(in.Constraint) != numPapers {
		ve.AddErrorWithField(apperror.CodeMalformedDimensions, "constraint matrix row count mismatch", "constraint")
	}
	for i, row := range in.Constraint {
		if len(row) != numReviewers {
			ve.AddErrorWithField(apperror.CodeMalformedDimensions, "constraint matrix col count mismatch", "constraint")
			break
		}
		for j, v := range row {
			if v != ConstraintConflict && v != ConstraintFree && v != ConstraintLocked {
				ve.AddErrorWithField(apperror.CodeInvalidConstraint,
					fmt.Sprintf("constraint[%d][%d]=%d out of {-1,0,1}", i, j, v), "constraint")
			}
		}
	}
	if len(in.MinReviewers) != numPapers || len(in.MaxReviewers) != numPapers {
		ve.AddErrorWithField(apperror.CodeMalformedDimensions, "min/max reviewers length mismatch", "min_reviewers")
	}
	if len(in.MinPapers) != numReviewers || len(in.MaxPapers) != numReviewers {
		ve.AddErrorWithField(apperror.CodeMalformedDimensions, "min/max papers length mismatch", "min_papers")
	}

	for j := 0; j < len(in.MinPapers) && j < len(in.MaxPapers); j++ {
		if in.MinPapers[j] < 0 || in.MaxPapers[j] < in.MinPapers[j] {
			ve.AddErrorWithField(apperror.CodeInvalidMinMax,
				fmt.Sprintf("reviewer %d: min_papers=%d max_papers=%d", j, in.MinPapers[j], in.MaxPapers[j]),
				"min_papers")
		}
	}
	for i := 0; i < len(in.MinReviewers) && i < len(in.MaxReviewers); i++ {
		if in.MinReviewers[i] < 0 || in.MaxReviewers[i] < in.MinReviewers[i] {
			ve.AddErrorWithField(apperror.CodeInvalidMinMax,
				fmt.Sprintf("paper %d: min_reviewers=%d max_reviewers=%d", i, in.MinReviewers[i], in.MaxReviewers[i]),
				"min_reviewers")
		}
	}

	// A locked pair must not also be conflicted and vice versa; Build
	// already rejected any value outside {-1,0,1} above. The remaining
	// lock-conflict case is a paper or reviewer whose locked pairs alone
	// already exceed its max quota, whether that's a single lock against
	// a max of 0 or several locks cumulatively overrunning a max > 0:
	// either way no assignment can honor every lock within that quota.
	lockedPerPaper := make([]int, numPapers)
	lockedPerReviewer := make([]int, numReviewers)
	for p := 0; p < len(in.Constraint) && p < numPapers; p++ {
		for r := 0; r < len(in.Constraint[p]) && r < numReviewers; r++ {
			if in.Constraint[p][r] != ConstraintLocked {
				continue
			}
			lockedPerPaper[p]++
			lockedPerReviewer[r]++
		}
	}
	for r := 0; r < numReviewers && r < len(in.MaxPapers); r++ {
		if lockedPerReviewer[r] > in.MaxPapers[r] {
			ve.AddErrorWithField(apperror.CodeLockConflict,
				fmt.Sprintf("reviewer %d locked to %d papers but max_papers=%d", r, lockedPerReviewer[r], in.MaxPapers[r]),
				"constraint")
		}
	}
	for p := 0; p < numPapers && p < len(in.MaxReviewers); p++ {
		if lockedPerPaper[p] > in.MaxReviewers[p] {
			ve.AddErrorWithField(apperror.CodeLockConflict,
				fmt.Sprintf("paper %d locked to %d reviewers but max_reviewers=%d", p, lockedPerPaper[p], in.MaxReviewers[p]),
				"constraint")
		}
	}

	if in.ProbLimit != nil {
		if len(in.ProbLimit) != numPapers {
			ve.AddErrorWithField(apperror.CodeInvalidProbLimit, "prob_limit row count mismatch", "prob_limit")
		}
		for i, row := range in.ProbLimit {
			for j, v := range row {
				if v < 0 || v > 1 {
					ve.AddErrorWithField(apperror.CodeInvalidProbLimit,
						fmt.Sprintf("prob_limit[%d][%d]=%v out of [0,1]", i, j, v), "prob_limit")
				}
				if i < len(in.Constraint) && j < len(in.Constraint[i]) &&
					in.Constraint[i][j] == ConstraintLocked && v != 1 {
					ve.AddErrorWithField(apperror.CodeInvalidProbLimit,
						fmt.Sprintf("prob_limit[%d][%d]=%v but pair is locked, must be 1", i, j, v), "prob_limit")
				}
			}
		}
	}

	if ve.HasErrors() {
		return nil, ve
	}

	score := mat.NewDense(numPapers, numReviewers, nil)
	for i := 0; i < numPapers; i++ {
		for j := 0; j < numReviewers; j++ {
			score.Set(i, j, in.Score[i][j])
		}
	}

	var probLimit *mat.Dense
	if in.ProbLimit != nil {
		probLimit = mat.NewDense(numPapers, numReviewers, nil)
		for i := 0; i < numPapers; i++ {
			for j := 0; j < numReviewers; j++ {
				probLimit.Set(i, j, in.ProbLimit[i][j])
			}
		}
	}

	return &Problem{
		PaperIDs:     append([]string(nil), in.PaperIDs...),
		ReviewerIDs:  append([]string(nil), in.ReviewerIDs...),
		Score:        score,
		MinReviewers: append([]int(nil), in.MinReviewers...),
		MaxReviewers: append([]int(nil), in.MaxReviewers...),
		MinPapers:    append([]int(nil), in.MinPapers...),
		MaxPapers:    append([]int(nil), in.MaxPapers...),
		Constraint:    in.Constraint,
		ProbLimit:     probLimit,
		NumAlternates: in.NumAlternates,
	}, ve
}

// FeasibilityCheck reports whether some assignment can satisfy every
// paper's and reviewer's minimum quota simultaneously, by building the
// mandatory/optional flow network (pkg/assign/flow) and confirming every
// mandatory leg can be saturated. It is the same test MinMax performs as
// a side effect of solving, exposed standalone so Build's caller can
// reject an infeasible Problem before spending a full solve on it.
func FeasibilityCheck(ctx context.Context, p *Problem) error {
	net, canceled := flow.BuildNetwork(ctx, p.NetworkSpec())
	if canceled {
		return apperror.New(apperror.CodeCancelled, "feasibility check cancelled")
	}

	result := flow.SuccessiveShortestPath(ctx, net.Graph, net.Source, net.Sink, net.TargetFlow)
	if result.Canceled {
		return apperror.New(apperror.CodeCancelled, "feasibility check cancelled")
	}
	if !net.MandatorySaturated() {
		return apperror.New(apperror.CodeInfeasibleQuota, "no assignment satisfies every minimum quota simultaneously")
	}
	return nil
}
