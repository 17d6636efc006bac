// Package scoreio reads and writes the whitespace "paper_id reviewer_id
// score" text format the out-of-scope CLI collaborator uses to hand a
// score matrix to the solver core.
package scoreio

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ParseScores reads one "paper_id reviewer_id score" record per line and
// returns the dense score matrix plus the paper/reviewer ids in the
// order first seen. Pairs never mentioned default to 0, matching the
// format's "missing pairs default to 0" rule.
func ParseScores(r io.Reader) (score *mat.Dense, paperIDs, reviewerIDs []string, err error) {
	paperIndex := make(map[string]int)
	reviewerIndex := make(map[string]int)

	type record struct {
		paper, reviewer string
		score           float64
	}
	var records []record

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, nil, nil, fmt.Errorf("scoreio: line %d: want 3 fields, got %d", lineNo, len(fields))
		}
		value, parseErr := strconv.ParseFloat(fields[2], 64)
		if parseErr != nil {
			return nil, nil, nil, fmt.Errorf("scoreio: line %d: invalid score %q: %w", lineNo, fields[2], parseErr)
		}

		paper, reviewer := fields[0], fields[1]
		if _, ok := paperIndex[paper]; !ok {
			paperIndex[paper] = len(paperIDs)
			paperIDs = append(paperIDs, paper)
		}
		if _, ok := reviewerIndex[reviewer]; !ok {
			reviewerIndex[reviewer] = len(reviewerIDs)
			reviewerIDs = append(reviewerIDs, reviewer)
		}
		records = append(records, record{paper, reviewer, value})
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, nil, nil, fmt.Errorf("scoreio: %w", scanErr)
	}

	score = mat.NewDense(len(paperIDs), len(reviewerIDs), nil)
	for _, rec := range records {
		score.Set(paperIndex[rec.paper], reviewerIndex[rec.reviewer], rec.score)
	}
	return score, paperIDs, reviewerIDs, nil
}

// WriteScores writes every (paper, reviewer) pair with a non-zero score,
// one "paper_id reviewer_id score" record per line, papers then
// reviewers in ascending index order for a deterministic byte-identical
// round trip.
func WriteScores(w io.Writer, score *mat.Dense, paperIDs, reviewerIDs []string) error {
	rows, cols := score.Dims()
	bw := bufio.NewWriter(w)
	for i := 0; i < rows && i < len(paperIDs); i++ {
		for j := 0; j < cols && j < len(reviewerIDs); j++ {
			v := score.At(i, j)
			if v == 0 {
				continue
			}
			if _, err := fmt.Fprintf(bw, "%s %s %s\n", paperIDs[i], reviewerIDs[j], strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// SortIDs returns a copy of ids sorted lexically, used by callers that
// want a canonical id ordering independent of first-seen order.
func SortIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
