package solve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewmatch/pkg/assign"
)

func buildProblem(t *testing.T, in assign.BuildInput) *assign.Problem {
	t.Helper()
	p, ve := assign.Build(in)
	require.False(t, ve.HasErrors(), ve.ErrorMessages())
	return p
}

func smallProblem(t *testing.T) *assign.Problem {
	return buildProblem(t, assign.BuildInput{
		PaperIDs:     []string{"p0", "p1"},
		ReviewerIDs:  []string{"r0", "r1"},
		Score:        [][]float64{{0.9, 0.1}, {0.2, 0.8}},
		Constraint:   [][]int8{{0, 0}, {0, 0}},
		MinReviewers: []int{1, 1},
		MaxReviewers: []int{1, 1},
		MinPapers:    []int{0, 0},
		MaxPapers:    []int{1, 1},
	})
}

func TestSolve_DispatchesEachKind(t *testing.T) {
	p := smallProblem(t)
	for _, kind := range []SolverKind{MinMax, FairFlow, Randomized, FairSequence} {
		result := Solve(context.Background(), p, kind, Options{Seed: 1})
		require.NoError(t, result.Err, "kind=%s", kind)
		assert.NotEmpty(t, result.Assignments, "kind=%s", kind)
	}
}

func TestSolve_UnknownKindIsValidationError(t *testing.T) {
	p := smallProblem(t)
	result := Solve(context.Background(), p, SolverKind("bogus"), Options{})
	require.Error(t, result.Err)
}
