// Package randomized implements the Randomized+BvN solver: an LP
// relaxation of the assignment polytope (grounded on
// jjhbw-GoMILP's equality-conversion pattern for gonum's Simplex, which
// only solves Ax=b, x>=0) followed by a Birkhoff-von-Neumann-style
// decomposition that samples an integral assignment preserving the LP's
// marginals in expectation.
package randomized

import (
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"reviewmatch/pkg/assign"
	"reviewmatch/pkg/assign/apperror"
	"reviewmatch/pkg/domain"
)

type pairIdx struct{ paper, reviewer int }

// lpSolution is the fractional assignment matrix the LP stage produced,
// restricted to free pairs; locked pairs are not variables (they are
// fixed at 1 by construction) and conflicted pairs are fixed at 0.
type lpSolution struct {
	X          *mat.Dense // NumPapers x NumReviewers, includes locked/conflicted
	Objective  float64
}

// solveLP builds and solves the row/column-bounded LP relaxation over
// p's free pairs, with each variable capped by ProbLimit (or 1 if no
// probability-limit matrix was given) and locked pairs pre-committed
// exactly like flow.BuildNetwork does: fixed at 1, with both endpoints'
// quotas reduced by one.
func solveLP(p *assign.Problem) (*lpSolution, error) {
	numPapers, numReviewers := p.NumPapers(), p.NumReviewers()

	effMinReviewers := append([]int(nil), p.MinReviewers...)
	effMaxReviewers := append([]int(nil), p.MaxReviewers...)
	effMinPapers := append([]int(nil), p.MinPapers...)
	effMaxPapers := append([]int(nil), p.MaxPapers...)

	X := mat.NewDense(numPapers, numReviewers, nil)

	// lockedObjective accumulates the score contribution of every locked
	// pair, which is fixed at x=1 by construction and so never appears as
	// an LP variable, but still counts toward the reported Objective: the
	// LP optimum is the total affinity of the whole fractional solution,
	// not just of the free pairs the simplex solver actually optimizes.
	var lockedObjective float64

	var freePairs []pairIdx
	for i := 0; i < numPapers; i++ {
		for j := 0; j < numReviewers; j++ {
			switch p.Constraint[i][j] {
			case assign.ConstraintLocked:
				X.Set(i, j, 1)
				lockedObjective += p.Score.At(i, j)
				if effMinReviewers[i] > 0 {
					effMinReviewers[i]--
				}
				effMaxReviewers[i] = domain.MaxInt(0, effMaxReviewers[i]-1)
				if effMinPapers[j] > 0 {
					effMinPapers[j]--
				}
				effMaxPapers[j] = domain.MaxInt(0, effMaxPapers[j]-1)
			case assign.ConstraintFree:
				freePairs = append(freePairs, pairIdx{i, j})
			}
		}
	}

	numVars := len(freePairs)
	if numVars == 0 {
		return &lpSolution{X: X, Objective: lockedObjective}, nil
	}

	varIndex := func(paper, reviewer int) int {
		for k, pr := range freePairs {
			if pr.paper == paper && pr.reviewer == reviewer {
				return k
			}
		}
		return -1
	}

	numRows := 2*numPapers + 2*numReviewers + numVars
	G := mat.NewDense(numRows, numVars, nil)
	h := make([]float64, numRows)
	row := 0

	for i := 0; i < numPapers; i++ {
		for _, pr := range freePairs {
			if pr.paper == i {
				G.Set(row, varIndex(pr.paper, pr.reviewer), 1)
			}
		}
		h[row] = float64(effMaxReviewers[i])
		row++
		for _, pr := range freePairs {
			if pr.paper == i {
				G.Set(row, varIndex(pr.paper, pr.reviewer), -1)
			}
		}
		h[row] = -float64(effMinReviewers[i])
		row++
	}

	for j := 0; j < numReviewers; j++ {
		for _, pr := range freePairs {
			if pr.reviewer == j {
				G.Set(row, varIndex(pr.paper, pr.reviewer), 1)
			}
		}
		h[row] = float64(effMaxPapers[j])
		row++
		for _, pr := range freePairs {
			if pr.reviewer == j {
				G.Set(row, varIndex(pr.paper, pr.reviewer), -1)
			}
		}
		h[row] = -float64(effMinPapers[j])
		row++
	}

	for k, pr := range freePairs {
		G.Set(row, k, 1)
		limit := 1.0
		if p.ProbLimit != nil {
			limit = p.ProbLimit.At(pr.paper, pr.reviewer)
		}
		h[row] = limit
		row++
	}

	c := make([]float64, numVars)
	for k, pr := range freePairs {
		c[k] = -p.Score.At(pr.paper, pr.reviewer)
	}

	cExt, AExt, bExt := convertToEqualities(c, G, h)

	_, xFull, err := lp.Simplex(cExt, AExt, bExt, 0, nil)
	if err != nil {
		if strings.Contains(err.Error(), "unbounded") {
			return nil, apperror.Wrap(err, apperror.CodeLPUnbounded, "LP relaxation unbounded")
		}
		return nil, apperror.Wrap(err, apperror.CodeInfeasibleLP, "LP relaxation infeasible")
	}

	objective := lockedObjective
	for k, pr := range freePairs {
		v := xFull[k]
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		X.Set(pr.paper, pr.reviewer, v)
		objective += v * p.Score.At(pr.paper, pr.reviewer)
	}

	return &lpSolution{X: X, Objective: objective}, nil
}

// convertToEqualities turns G x <= h, x >= 0 into A x = b, x >= 0 by
// appending one slack variable per row, the same transformation
// GoMILP's subproblem solver applies before calling gonum's Simplex.
func convertToEqualities(c []float64, G *mat.Dense, h []float64) (cNew []float64, aNew *mat.Dense, bNew []float64) {
	rows, cols := G.Dims()

	cNew = make([]float64, cols+rows)
	copy(cNew, c)

	aNew = mat.NewDense(rows, cols+rows, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			aNew.Set(i, j, G.At(i, j))
		}
		aNew.Set(i, cols+i, 1)
	}

	bNew = append([]float64(nil), h...)
	return cNew, aNew, bNew
}
