// Package flow implements a residual graph and a Successive-Shortest-Path
// min-cost flow kernel shared by the MinMax and FairFlow solvers.
package flow

import (
	"sort"
	"sync"
)

// Edge is one directed arc of the residual graph. Every forward edge is
// paired with a reverse edge of zero original capacity that absorbs
// cancelled flow; Index points at that pair's position in the sibling
// node's edge list.
type Edge struct {
	To               int64
	Capacity         float64
	Cost             float64
	Flow             float64
	OriginalCapacity float64
	IsReverse        bool
	Index            int
}

// Graph is an adjacency-list residual graph keyed by node id. Edge
// iteration always goes through sorted node ids and each node's
// insertion-ordered edge list, so two runs over the same Problem visit
// edges in the same order and produce the same augmenting paths.
type Graph struct {
	mu    sync.Mutex
	nodes map[int64]bool
	edges map[int64][]*Edge // adjacency list in insertion order

	sortedNodes      []int64
	sortedNodesDirty bool
}

func NewGraph() *Graph {
	return &Graph{
		nodes:            make(map[int64]bool),
		edges:            make(map[int64][]*Edge),
		sortedNodesDirty: true,
	}
}

func (g *Graph) AddNode(id int64) {
	if !g.nodes[id] {
		g.nodes[id] = true
		g.sortedNodesDirty = true
	}
	if g.edges[id] == nil {
		g.edges[id] = make([]*Edge, 0)
	}
}

// AddEdgeWithReverse adds a forward edge from->to with the given capacity
// and cost, plus a reverse edge to->from with zero capacity and negated
// cost, wiring each edge's Index to its sibling. Unlike a general-purpose
// residual graph, this one never merges two calls for the same (from, to)
// pair into a single edge: callers that need two legs between the same
// logical pair (e.g. a mandatory and an optional quota leg) route the
// second leg through a distinct intermediate node instead. That keeps
// AddEdgeWithReverse's bookkeeping a straight append, with no hidden
// accumulation surprising a caller who wants two independently-costed
// edges.
func (g *Graph) AddEdgeWithReverse(from, to int64, capacity, cost float64) {
	g.AddNode(from)
	g.AddNode(to)

	fwd := &Edge{To: to, Capacity: capacity, Cost: cost, OriginalCapacity: capacity}
	rev := &Edge{To: from, Capacity: 0, Cost: -cost, OriginalCapacity: 0, IsReverse: true}

	fwd.Index = len(g.edges[to])
	rev.Index = len(g.edges[from])

	g.edges[from] = append(g.edges[from], fwd)
	g.edges[to] = append(g.edges[to], rev)
}

func (g *Graph) GetEdges(from int64) []*Edge {
	return g.edges[from]
}

func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	total := 0
	for _, list := range g.edges {
		for _, e := range list {
			if !e.IsReverse {
				total++
			}
		}
	}
	return total
}

// GetSortedNodes returns every node id in ascending order, cached until
// the next AddNode.
func (g *Graph) GetSortedNodes() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.sortedNodesDirty && g.sortedNodes != nil {
		return g.sortedNodes
	}

	nodes := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	g.sortedNodes = nodes
	g.sortedNodesDirty = false
	return nodes
}

// UpdateFlow pushes amount units of flow along edge and mirrors the
// opposite adjustment onto its reverse sibling.
func (g *Graph) UpdateFlow(from int64, edge *Edge, amount float64) {
	edge.Flow += amount
	edge.Capacity -= amount

	reverse := g.edges[edge.To][edge.Index]
	reverse.Flow -= amount
	reverse.Capacity += amount
}

// GetFlowOnEdge returns the flow on the first non-reverse edge between
// from and to found in insertion order.
func (g *Graph) GetFlowOnEdge(from, to int64) float64 {
	for _, e := range g.edges[from] {
		if !e.IsReverse && e.To == to {
			return e.Flow
		}
	}
	return 0
}

// TotalCost sums cost*flow over every forward edge with positive flow.
func (g *Graph) TotalCost() float64 {
	total := 0.0
	for _, list := range g.edges {
		for _, e := range list {
			if !e.IsReverse && e.Flow > 0 {
				total += e.Cost * e.Flow
			}
		}
	}
	return total
}

// Clone deep-copies the graph so a caller can mutate a copy (push flow,
// re-solve) without disturbing the original graph.
func (g *Graph) Clone() *Graph {
	clone := NewGraph()
	for id := range g.nodes {
		clone.AddNode(id)
	}
	for from, list := range g.edges {
		cloned := make([]*Edge, len(list))
		for i, e := range list {
			copyEdge := *e
			cloned[i] = &copyEdge
		}
		clone.edges[from] = cloned
	}
	clone.sortedNodesDirty = true
	return clone
}
