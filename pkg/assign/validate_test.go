package assign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallInput() BuildInput {
	return BuildInput{
		PaperIDs:     []string{"p0", "p1"},
		ReviewerIDs:  []string{"r0", "r1", "r2"},
		Score:        [][]float64{{0.9, 0.1, 0.5}, {0.2, 0.8, 0.4}},
		Constraint:   [][]int8{{0, 0, 0}, {0, 0, 0}},
		MinReviewers: []int{1, 1},
		MaxReviewers: []int{2, 2},
		MinPapers:     []int{0, 0, 0},
		MaxPapers:     []int{1, 1, 1},
		NumAlternates: 5,
	}
}

func TestBuild_Valid(t *testing.T) {
	p, ve := Build(smallInput())
	require.False(t, ve.HasErrors())
	require.NotNil(t, p)
	assert.Equal(t, 2, p.NumPapers())
	assert.Equal(t, 3, p.NumReviewers())
}

func TestBuild_RejectsMalformedDimensions(t *testing.T) {
	in := smallInput()
	in.Score = [][]float64{{0.9, 0.1, 0.5}}
	_, ve := Build(in)
	require.True(t, ve.HasErrors())
}

func TestBuild_RejectsInvertedMinMax(t *testing.T) {
	in := smallInput()
	in.MinPapers[0] = 5
	in.MaxPapers[0] = 1
	_, ve := Build(in)
	require.True(t, ve.HasErrors())
	assert.Equal(t, "INVALID_MIN_MAX", string(ve.First().Code))
}

func TestBuild_RejectsLockWithZeroMaxQuota(t *testing.T) {
	in := smallInput()
	in.Constraint[0][0] = ConstraintLocked
	in.MaxPapers[0] = 0
	_, ve := Build(in)
	require.True(t, ve.HasErrors())
}

func TestBuild_RejectsLockedPairsOvercommittingPaperMaxReviewers(t *testing.T) {
	in := smallInput()
	// p0 locked to both r0 and r1, but max_reviewers=1 < 2 locks, even
	// though neither reviewer's own max_papers is individually 0.
	in.Constraint[0] = []int8{ConstraintLocked, ConstraintLocked, ConstraintFree}
	in.MaxReviewers[0] = 1
	_, ve := Build(in)
	require.True(t, ve.HasErrors())
	assert.Equal(t, "LOCK_CONFLICT", string(ve.First().Code))
}

func TestBuild_RejectsLockedPairsOvercommittingReviewerMaxPapers(t *testing.T) {
	in := smallInput()
	// r0 locked to both p0 and p1, but max_papers=1 < 2 locks.
	in.Constraint[0][0] = ConstraintLocked
	in.Constraint[1][0] = ConstraintLocked
	in.MaxPapers[0] = 1
	_, ve := Build(in)
	require.True(t, ve.HasErrors())
	assert.Equal(t, "LOCK_CONFLICT", string(ve.First().Code))
}

func TestBuild_CombinesWeightedScoreSources(t *testing.T) {
	in := smallInput()
	in.Score = nil
	in.Scores = [][][]float64{
		{{1, 0, 0}, {0, 1, 0}},  // bid affinity
		{{1, 1, 1}, {1, 1, 1}},  // conflict-of-interest penalty source, negative weight below
	}
	in.Weights = []float64{1.0, -0.5}

	p, ve := Build(in)
	require.False(t, ve.HasErrors(), ve.ErrorMessages())
	assert.InDelta(t, 0.5, p.Score.At(0, 0), 1e-9)  // 1*1 + (-0.5)*1
	assert.InDelta(t, -0.5, p.Score.At(0, 1), 1e-9) // 1*0 + (-0.5)*1
	assert.InDelta(t, -0.5, p.Score.At(1, 0), 1e-9)
	assert.InDelta(t, 0.5, p.Score.At(1, 1), 1e-9)
}

func TestBuild_RejectsScoreWeightLengthMismatch(t *testing.T) {
	in := smallInput()
	in.Score = nil
	in.Scores = [][][]float64{{{1, 0, 0}, {0, 1, 0}}}
	in.Weights = []float64{1.0, 2.0}

	_, ve := Build(in)
	require.True(t, ve.HasErrors())
}

func TestBuild_RejectsLockedPairWithProbLimitBelowOne(t *testing.T) {
	in := smallInput()
	in.Constraint[0][0] = ConstraintLocked
	in.ProbLimit = [][]float64{{0.5, 1, 1}, {1, 1, 1}}

	_, ve := Build(in)
	require.True(t, ve.HasErrors())
	assert.Equal(t, "INVALID_PROB_LIMIT", string(ve.First().Code))
}

func TestFeasibilityCheck_Feasible(t *testing.T) {
	p, ve := Build(smallInput())
	require.False(t, ve.HasErrors())
	err := FeasibilityCheck(context.Background(), p)
	assert.NoError(t, err)
}

func TestFeasibilityCheck_Infeasible(t *testing.T) {
	in := smallInput()
	// Every paper needs 2 reviewers minimum but all pairs are conflicted
	// except one reviewer per paper, so the minimum cannot be met.
	in.MinReviewers = []int{2, 2}
	in.Constraint = [][]int8{{0, -1, -1}, {-1, 0, -1}}
	p, ve := Build(in)
	require.False(t, ve.HasErrors())

	err := FeasibilityCheck(context.Background(), p)
	require.Error(t, err)
}

func TestRankAlternates(t *testing.T) {
	p, ve := Build(smallInput())
	require.False(t, ve.HasErrors())

	assignments := []Assignment{{PaperIdx: 0, ReviewerIdx: 0}}
	alts := RankAlternates(p, assignments)

	var paper0 []AlternateEntry
	for _, a := range alts {
		if a.PaperIdx == 0 {
			paper0 = append(paper0, a)
		}
	}
	require.Len(t, paper0, 2) // r1, r2 (r0 already assigned)
	assert.Equal(t, 2, paper0[0].ReviewerIdx)
	assert.Equal(t, 1, paper0[1].ReviewerIdx)
}
