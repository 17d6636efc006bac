package randomized

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDecompose_ProducesIntegralMatrix(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	result, rounds, err := decompose(context.Background(), x, 2, 2, 42)
	assert.NoError(t, err)

	assert.Greater(t, rounds, 0)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v := result.At(i, j)
			assert.True(t, v == 0 || v == 1, "cell (%d,%d)=%v not integral", i, j, v)
		}
	}
}

func TestDecompose_PreservesRowSums(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	result, _, err := decompose(context.Background(), x, 2, 2, 7)
	assert.NoError(t, err)

	for i := 0; i < 2; i++ {
		sum := result.At(i, 0) + result.At(i, 1)
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestDecompose_AlreadyIntegralIsNoOp(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	result, rounds, err := decompose(context.Background(), x, 2, 2, 1)
	assert.NoError(t, err)

	assert.Equal(t, 0, rounds)
	assert.InDelta(t, 1.0, result.At(0, 0), 1e-9)
	assert.InDelta(t, 0.0, result.At(0, 1), 1e-9)
}

func TestDecompose_ForestFallsBackToPathRounding(t *testing.T) {
	// A single fractional edge with no partner forms neither a cycle nor
	// a multi-edge path; decompose must still terminate.
	x := mat.NewDense(2, 2, []float64{0.5, 0, 0, 0})
	result, rounds, err := decompose(context.Background(), x, 2, 2, 3)
	assert.NoError(t, err)

	assert.GreaterOrEqual(t, rounds, 1)
	v := result.At(0, 0)
	assert.True(t, v == 0 || v == 1)
}

func TestDecompose_DeterministicForSameSeed(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	a, _, err := decompose(context.Background(), x, 2, 2, 99)
	assert.NoError(t, err)
	b, _, err := decompose(context.Background(), x, 2, 2, 99)
	assert.NoError(t, err)

	assert.Equal(t, a.RawMatrix().Data, b.RawMatrix().Data)
}
