package assign

import "sort"

// RankAlternates returns, for every paper, up to p.NumAlternates reviewers
// that are neither conflicted nor already assigned to that paper, ordered
// by descending score and then ascending reviewer index for a
// deterministic tie-break.
func RankAlternates(p *Problem, assignments []Assignment) []AlternateEntry {
	assigned := make(map[[2]int]bool, len(assignments))
	for _, a := range assignments {
		assigned[[2]int{a.PaperIdx, a.ReviewerIdx}] = true
	}

	var out []AlternateEntry
	for paperIdx := 0; paperIdx < p.NumPapers(); paperIdx++ {
		type candidate struct {
			reviewerIdx int
			score       float64
		}
		var candidates []candidate
		for reviewerIdx := 0; reviewerIdx < p.NumReviewers(); reviewerIdx++ {
			if p.Constraint[paperIdx][reviewerIdx] == ConstraintConflict {
				continue
			}
			if assigned[[2]int{paperIdx, reviewerIdx}] {
				continue
			}
			candidates = append(candidates, candidate{reviewerIdx, p.Score.At(paperIdx, reviewerIdx)})
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].score != candidates[j].score {
				return candidates[i].score > candidates[j].score
			}
			return candidates[i].reviewerIdx < candidates[j].reviewerIdx
		})
		if len(candidates) > p.NumAlternates {
			candidates = candidates[:p.NumAlternates]
		}
		for rank, c := range candidates {
			out = append(out, AlternateEntry{
				PaperIdx:    paperIdx,
				ReviewerIdx: c.reviewerIdx,
				PaperID:     p.PaperIDs[paperIdx],
				ReviewerID:  p.ReviewerIDs[c.reviewerIdx],
				Score:       c.score,
				Rank:        rank,
			})
		}
	}
	return out
}
