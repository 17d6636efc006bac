package randomized

import (
	"context"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"reviewmatch/pkg/assign/apperror"
	"reviewmatch/pkg/domain"
)

// bvnEdge is one fractional (paper, reviewer) cell still being rounded.
type bvnEdge struct {
	paper, reviewer int
}

// decompose takes the LP's fractional matrix X and repeatedly cancels a
// cycle (or, once the fractional support degenerates into a forest, a
// path) of fractional edges until every cell is 0 or 1, sampling the
// direction of each cancellation with a seeded RNG so the whole pass is
// reproducible for a given seed. It returns the integral matrix and the
// number of cancellation rounds performed.
func decompose(ctx context.Context, x *mat.Dense, numPapers, numReviewers int, seed uint64) (*mat.Dense, int, error) {
	rng := rand.New(rand.NewSource(int64(seed)))

	result := mat.NewDense(numPapers, numReviewers, nil)
	result.Copy(x)

	rounds := 0
	for {
		select {
		case <-ctx.Done():
			return result, rounds, apperror.New(apperror.CodeCancelled, "bvn decomposition cancelled")
		default:
		}

		edges := fractionalEdges(result, numPapers, numReviewers)
		if len(edges) == 0 {
			break
		}
		cycle, isCycle := findAlternatingChain(edges, numPapers)
		if len(cycle) < 2 {
			// The chain has fewer than two edges (e.g. an isolated
			// fractional edge): round that edge on its own, to 1 with
			// probability equal to its current value.
			e := edges[0]
			roundCell(result, e, rng.Float64() < result.At(e.paper, e.reviewer))
			rounds++
			continue
		}
		cancelChain(result, cycle, isCycle, rng)
		rounds++
	}

	return result, rounds, nil
}

func fractionalEdges(x *mat.Dense, numPapers, numReviewers int) []bvnEdge {
	var edges []bvnEdge
	for i := 0; i < numPapers; i++ {
		for j := 0; j < numReviewers; j++ {
			v := x.At(i, j)
			if v > domain.Epsilon && v < 1-domain.Epsilon {
				edges = append(edges, bvnEdge{i, j})
			}
		}
	}
	return edges
}

// findAlternatingChain searches the bipartite support graph of
// fractional edges for a cycle via DFS; if the support graph is a forest
// it instead returns the path from the DFS root to the last node the DFS
// entered, which is enough to round at least one more edge per round
// while leaving every interior node's row/column sum untouched.
func findAlternatingChain(edges []bvnEdge, numPapers int) (chain []bvnEdge, isCycle bool) {
	paperAdj := make(map[int][]bvnEdge)
	reviewerAdj := make(map[int][]bvnEdge)
	for _, e := range edges {
		paperAdj[e.paper] = append(paperAdj[e.paper], e)
		reviewerAdj[e.reviewer] = append(reviewerAdj[e.reviewer], e)
	}

	// node id: paper p -> p, reviewer r -> numPapers+r
	visited := make(map[int]bool)
	onStack := make(map[int]bool)
	parentOf := make(map[int]int)
	parentEdge := make(map[int]bvnEdge)

	start := edges[0].paper
	lastVisited := start

	neighbors := func(node int) []bvnEdge {
		if node < numPapers {
			return paperAdj[node]
		}
		return reviewerAdj[node-numPapers]
	}
	otherEnd := func(node int, e bvnEdge) int {
		if node < numPapers {
			return numPapers + e.reviewer
		}
		return e.paper
	}

	// Recursive DFS; on finding a back edge to a node on the current
	// stack, unwind parent pointers to build the cycle.
	var dfs func(node, parent int) []bvnEdge
	dfs = func(node, parent int) []bvnEdge {
		visited[node] = true
		onStack[node] = true
		lastVisited = node

		for _, e := range neighbors(node) {
			next := otherEnd(node, e)
			if next == parent {
				continue
			}
			if onStack[next] {
				// Found a cycle: walk back from node to next.
				cyc := []bvnEdge{e}
				cur := node
				for cur != next {
					cyc = append(cyc, parentEdge[cur])
					cur = parentOf[cur]
				}
				return cyc
			}
			if !visited[next] {
				parentOf[next] = node
				parentEdge[next] = e
				if found := dfs(next, node); found != nil {
					return found
				}
			}
		}
		onStack[node] = false
		return nil
	}

	if found := dfs(start, -1); found != nil {
		return found, true
	}

	// Forest: build the path from start to the deepest node reached.
	var path []bvnEdge
	cur := lastVisited
	for cur != start {
		e := parentEdge[cur]
		path = append([]bvnEdge{e}, path...)
		cur = parentOf[cur]
	}
	return path, false
}

// cancelChain applies dependent rounding to chain: edges alternate
// sign (+ at even position, - at odd), and the two possible step sizes
// (how far the "+" direction can go before a + edge saturates at 1 or a
// - edge saturates at 0, and vice versa) are sampled from with exactly
// the probabilities that keep E[x] unchanged.
func cancelChain(x *mat.Dense, chain []bvnEdge, isCycle bool, rng *rand.Rand) {
	deltaPlus := 1.0
	deltaMinus := 1.0
	for i, e := range chain {
		v := x.At(e.paper, e.reviewer)
		if i%2 == 0 {
			deltaPlus = domain.Min(deltaPlus, 1-v)
			deltaMinus = domain.Min(deltaMinus, v)
		} else {
			deltaPlus = domain.Min(deltaPlus, v)
			deltaMinus = domain.Min(deltaMinus, 1-v)
		}
	}
	if deltaPlus <= domain.Epsilon && deltaMinus <= domain.Epsilon {
		return
	}

	total := deltaPlus + deltaMinus
	takePlus := true
	if total > domain.Epsilon {
		takePlus = rng.Float64() < deltaMinus/total
	}

	delta := deltaMinus
	sign := -1.0
	if takePlus {
		delta = deltaPlus
		sign = 1.0
	}

	for i, e := range chain {
		v := x.At(e.paper, e.reviewer)
		if i%2 == 0 {
			x.Set(e.paper, e.reviewer, clamp01(v+sign*delta))
		} else {
			x.Set(e.paper, e.reviewer, clamp01(v-sign*delta))
		}
	}
	_ = isCycle
}

func roundCell(x *mat.Dense, e bvnEdge, toOne bool) {
	if toOne {
		x.Set(e.paper, e.reviewer, 1)
	} else {
		x.Set(e.paper, e.reviewer, 0)
	}
}

func clamp01(v float64) float64 {
	if v < domain.Epsilon {
		return 0
	}
	if v > 1-domain.Epsilon {
		return 1
	}
	return v
}
