package flow

import (
	"context"
	"math"

	"reviewmatch/pkg/domain"
)

// edgeCancelInterval is the K from the spec's cancellation cadence: the
// builder checks ctx at most once per this many free-pair edges inserted.
const edgeCancelInterval = 10000

// NetworkSpec is the plain data a bipartite review-assignment network is
// built from. It carries no dependency on the Problem type so this
// package stays usable standalone; pkg/assign/minmax adapts a Problem
// into a NetworkSpec.
type NetworkSpec struct {
	NumPapers, NumReviewers int

	// Score[p][r] is the effective combined affinity, read only where
	// Constraint[p][r] == 0.
	Score [][]float64

	// Constraint[p][r] is -1 (conflicted), 0 (free), or 1 (locked).
	Constraint [][]int8

	MinReviewers, MaxReviewers []int // len NumPapers
	MinPapers, MaxPapers       []int // len NumReviewers
}

// Network is a built flow graph plus the bookkeeping needed to read an
// assignment back off of it once it has been solved.
type Network struct {
	Graph  *Graph
	Source int64
	Sink   int64

	ReviewerNode []int64 // reviewer index -> R node id
	PaperNode    []int64 // paper index -> P node id

	reviewerMandNode []int64
	paperMandNode    []int64

	mandatoryReviewerCap []float64 // post-lock-adjustment mandatory leg size per reviewer
	mandatoryPaperCap    []float64 // post-lock-adjustment mandatory leg size per paper

	// LockedPairs are pre-committed (paper, reviewer) index pairs that
	// were never added to the graph because they are unconditional.
	LockedPairs [][2]int

	TargetFlow float64
}

// node id layout: Source=0, Sink=1, then reviewers, papers, reviewer
// mandatory-leg nodes, paper mandatory-leg nodes.
func nodeLayout(numReviewers, numPapers int) (source, sink int64, reviewerBase, paperBase, reviewerMandBase, paperMandBase int64) {
	source = 0
	sink = 1
	reviewerBase = 2
	paperBase = reviewerBase + int64(numReviewers)
	reviewerMandBase = paperBase + int64(numPapers)
	paperMandBase = reviewerMandBase + int64(numReviewers)
	return
}

// BuildNetwork constructs the Source->Reviewer->Paper->Sink flow network
// for spec, splitting every reviewer and paper node into a mandatory leg
// (capacity = its minimum quota, cost = a large negative BigM so the
// solver saturates it before anything else) and an optional leg (capacity
// = max-min, cost 0). Locked pairs are pre-committed outside the graph:
// their capacity is subtracted from both endpoints' quotas and they are
// recorded in LockedPairs rather than wired as an edge. Conflicted pairs
// get no edge at all.
func BuildNetwork(ctx context.Context, spec NetworkSpec) (*Network, bool) {
	source, sink, reviewerBase, paperBase, reviewerMandBase, paperMandBase := nodeLayout(spec.NumReviewers, spec.NumPapers)

	g := NewGraph()
	g.AddNode(source)
	g.AddNode(sink)

	net := &Network{
		Graph:                g,
		Source:               source,
		Sink:                 sink,
		ReviewerNode:         make([]int64, spec.NumReviewers),
		PaperNode:            make([]int64, spec.NumPapers),
		reviewerMandNode:     make([]int64, spec.NumReviewers),
		paperMandNode:        make([]int64, spec.NumPapers),
		mandatoryReviewerCap: make([]float64, spec.NumReviewers),
		mandatoryPaperCap:    make([]float64, spec.NumPapers),
	}
	for i := 0; i < spec.NumReviewers; i++ {
		net.ReviewerNode[i] = reviewerBase + int64(i)
		net.reviewerMandNode[i] = reviewerMandBase + int64(i)
	}
	for j := 0; j < spec.NumPapers; j++ {
		net.PaperNode[j] = paperBase + int64(j)
		net.paperMandNode[j] = paperMandBase + int64(j)
	}

	// Pre-commit locked pairs: reduce both endpoints' effective quotas.
	reviewerMin := append([]int(nil), spec.MinPapers...)
	reviewerMax := append([]int(nil), spec.MaxPapers...)
	paperMin := append([]int(nil), spec.MinReviewers...)
	paperMax := append([]int(nil), spec.MaxReviewers...)

	for p := 0; p < spec.NumPapers; p++ {
		for r := 0; r < spec.NumReviewers; r++ {
			if spec.Constraint[p][r] != 1 {
				continue
			}
			net.LockedPairs = append(net.LockedPairs, [2]int{p, r})
			if reviewerMin[r] > 0 {
				reviewerMin[r]--
			}
			reviewerMax[r] = domain.MaxInt(0, reviewerMax[r]-1)
			if paperMin[p] > 0 {
				paperMin[p]--
			}
			paperMax[p] = domain.MaxInt(0, paperMax[p]-1)
		}
	}

	bigM := computeBigM(spec)

	for i := 0; i < spec.NumReviewers; i++ {
		minCap := float64(reviewerMin[i])
		optCap := float64(reviewerMax[i] - reviewerMin[i])
		net.mandatoryReviewerCap[i] = minCap

		if minCap > domain.Epsilon {
			g.AddEdgeWithReverse(source, net.reviewerMandNode[i], minCap, bigM)
			g.AddEdgeWithReverse(net.reviewerMandNode[i], net.ReviewerNode[i], minCap, 0)
		}
		if optCap > domain.Epsilon {
			g.AddEdgeWithReverse(source, net.ReviewerNode[i], optCap, 0)
		}
	}

	for j := 0; j < spec.NumPapers; j++ {
		minCap := float64(paperMin[j])
		optCap := float64(paperMax[j] - paperMin[j])
		net.mandatoryPaperCap[j] = minCap

		if minCap > domain.Epsilon {
			g.AddEdgeWithReverse(net.paperMandNode[j], sink, minCap, bigM)
			g.AddEdgeWithReverse(net.PaperNode[j], net.paperMandNode[j], minCap, 0)
		}
		if optCap > domain.Epsilon {
			g.AddEdgeWithReverse(net.PaperNode[j], sink, optCap, 0)
		}
	}

	inserted := 0
	for p := 0; p < spec.NumPapers; p++ {
		for r := 0; r < spec.NumReviewers; r++ {
			if spec.Constraint[p][r] != 0 {
				continue
			}
			cost := math.Round(-spec.Score[p][r] * domain.CostScale)
			g.AddEdgeWithReverse(net.ReviewerNode[r], net.PaperNode[p], 1, cost)
			inserted++
			if inserted%edgeCancelInterval == 0 {
				select {
				case <-ctx.Done():
					return net, true
				default:
				}
			}
		}
	}

	total := 0.0
	for i := range reviewerMax {
		total += float64(reviewerMax[i])
	}
	net.TargetFlow = total

	return net, false
}

// computeBigM picks a cost magnitude that dominates the sum of every
// possible optional-leg cost in the graph, so a cost-minimizing solver
// always prefers saturating a mandatory leg over leaving it short to
// pursue cheaper optional edges.
func computeBigM(spec NetworkSpec) float64 {
	maxAbs := 1.0
	pairs := 0.0
	for p := 0; p < spec.NumPapers; p++ {
		for r := 0; r < spec.NumReviewers; r++ {
			if spec.Constraint[p][r] != 0 {
				continue
			}
			pairs++
			c := math.Abs(spec.Score[p][r] * domain.CostScale)
			if c > maxAbs {
				maxAbs = c
			}
		}
	}
	return -(maxAbs*pairs + maxAbs + 1)
}

// MandatorySaturated reports whether every mandatory leg reached full
// flow, the operational definition of "largest feasible value saturating
// all minimums" from a solved network.
func (n *Network) MandatorySaturated() bool {
	for i, capv := range n.mandatoryReviewerCap {
		if capv <= domain.Epsilon {
			continue
		}
		if domain.FloatLess(n.Graph.GetFlowOnEdge(n.Source, n.reviewerMandNode[i]), capv) {
			return false
		}
	}
	for j, capv := range n.mandatoryPaperCap {
		if capv <= domain.Epsilon {
			continue
		}
		if domain.FloatLess(n.Graph.GetFlowOnEdge(n.paperMandNode[j], n.Sink), capv) {
			return false
		}
	}
	return true
}

// Assignment reads the solved flow off the graph as (paper, reviewer)
// index pairs with capacity-1 edges carrying flow, plus every locked
// pair (which was never represented as a graph edge).
func (n *Network) Assignment(spec NetworkSpec) [][2]int {
	var out [][2]int
	for p := 0; p < spec.NumPapers; p++ {
		for r := 0; r < spec.NumReviewers; r++ {
			if spec.Constraint[p][r] != 0 {
				continue
			}
			if n.Graph.GetFlowOnEdge(n.ReviewerNode[r], n.PaperNode[p]) > 0.5 {
				out = append(out, [2]int{p, r})
			}
		}
	}
	out = append(out, n.LockedPairs...)
	return out
}
