package scoreio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScores_Basic(t *testing.T) {
	input := "p0 r0 0.9\np0 r1 0.1\np1 r0 0.2\n"
	score, paperIDs, reviewerIDs, err := ParseScores(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"p0", "p1"}, paperIDs)
	assert.Equal(t, []string{"r0", "r1"}, reviewerIDs)
	assert.InDelta(t, 0.9, score.At(0, 0), 1e-9)
	assert.InDelta(t, 0.0, score.At(1, 1), 1e-9) // missing pair defaults to 0
}

func TestParseScores_RejectsMalformedLine(t *testing.T) {
	_, _, _, err := ParseScores(strings.NewReader("p0 r0\n"))
	require.Error(t, err)
}

func TestParseScores_RejectsNonNumericScore(t *testing.T) {
	_, _, _, err := ParseScores(strings.NewReader("p0 r0 nope\n"))
	require.Error(t, err)
}

func TestParseScores_SkipsBlankLines(t *testing.T) {
	input := "p0 r0 0.5\n\n   \np1 r0 0.3\n"
	_, paperIDs, _, err := ParseScores(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"p0", "p1"}, paperIDs)
}

func TestWriteScores_RoundTrip(t *testing.T) {
	input := "p0 r0 0.9\np1 r1 0.3\n"
	score, paperIDs, reviewerIDs, err := ParseScores(strings.NewReader(input))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteScores(&buf, score, paperIDs, reviewerIDs))

	score2, paperIDs2, reviewerIDs2, err := ParseScores(&buf)
	require.NoError(t, err)
	assert.Equal(t, paperIDs, paperIDs2)
	assert.Equal(t, reviewerIDs, reviewerIDs2)
	assert.InDelta(t, score.At(0, 0), score2.At(0, 0), 1e-9)
	assert.InDelta(t, score.At(1, 1), score2.At(1, 1), 1e-9)
}

func TestWriteScores_OmitsZeroPairs(t *testing.T) {
	input := "p0 r0 0.9\np0 r1 0\n"
	score, paperIDs, reviewerIDs, err := ParseScores(strings.NewReader(input))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteScores(&buf, score, paperIDs, reviewerIDs))
	assert.Equal(t, "p0 r0 0.9\n", buf.String())
}
