package flow

import (
	"container/heap"
	"context"

	"reviewmatch/pkg/domain"
)

// ShortestPathResult carries per-node distances and parent pointers used
// to reconstruct the shortest path to any reachable node.
type ShortestPathResult struct {
	Distances map[int64]float64
	Parent    map[int64]int64
	Reachable map[int64]bool
	Canceled  bool
}

// bellmanFord seeds node potentials from source, tolerating negative
// edge costs (the mandatory-leg edges carry a large negative cost). It
// relaxes every edge |V|-1 times and checks context every 100 iterations,
// matching the cadence used throughout this package's potential-seeding
// pass.
func bellmanFord(ctx context.Context, g *Graph, source int64) *ShortestPathResult {
	nodes := g.GetSortedNodes()

	dist := make(map[int64]float64, len(nodes))
	parent := make(map[int64]int64, len(nodes))
	reachable := make(map[int64]bool, len(nodes))
	for _, n := range nodes {
		dist[n] = domain.Infinity
	}
	dist[source] = 0
	reachable[source] = true

	for i := 0; i < len(nodes)-1; i++ {
		if i%100 == 0 {
			select {
			case <-ctx.Done():
				return &ShortestPathResult{Distances: dist, Parent: parent, Reachable: reachable, Canceled: true}
			default:
			}
		}

		changed := false
		for _, from := range nodes {
			if dist[from] == domain.Infinity {
				continue
			}
			for _, e := range g.edges[from] {
				if e.Capacity <= domain.Epsilon {
					continue
				}
				nd := dist[from] + e.Cost
				if nd < dist[e.To]-domain.Epsilon {
					dist[e.To] = nd
					parent[e.To] = from
					reachable[e.To] = true
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	return &ShortestPathResult{Distances: dist, Parent: parent, Reachable: reachable}
}

type heapItem struct {
	node int64
	dist float64
}

type priorityQueue []heapItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(heapItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstraWithPotentials runs Dijkstra over reduced costs
// (cost + potential[from] - potential[to]), which are non-negative once
// potentials satisfy the usual Johnson invariant. It falls back to a full
// bellmanFord pass if it ever observes a significantly negative reduced
// cost, the sign that potentials have drifted out of date.
func dijkstraWithPotentials(ctx context.Context, g *Graph, source int64, potential map[int64]float64) *ShortestPathResult {
	nodes := g.GetSortedNodes()

	dist := make(map[int64]float64, len(nodes))
	parent := make(map[int64]int64, len(nodes))
	reachable := make(map[int64]bool, len(nodes))
	visited := make(map[int64]bool, len(nodes))
	for _, n := range nodes {
		dist[n] = domain.Infinity
	}
	dist[source] = 0
	reachable[source] = true

	pq := &priorityQueue{{node: source, dist: 0}}
	heap.Init(pq)

	iterations := 0
	for pq.Len() > 0 {
		iterations++
		if iterations%100 == 0 {
			select {
			case <-ctx.Done():
				return &ShortestPathResult{Distances: dist, Parent: parent, Reachable: reachable, Canceled: true}
			default:
			}
		}

		item := heap.Pop(pq).(heapItem)
		u := item.node
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, e := range g.edges[u] {
			if e.Capacity <= domain.Epsilon {
				continue
			}
			v := e.To
			reduced := e.Cost + potential[u] - potential[v]
			if reduced < -domain.Epsilon {
				// Potentials are stale for this edge; answer with a
				// full bellmanFord pass instead.
				return bellmanFord(ctx, g, source)
			}
			if reduced < 0 {
				reduced = 0
			}
			nd := dist[u] + reduced
			if nd < dist[v]-domain.Epsilon {
				dist[v] = nd
				parent[v] = u
				reachable[v] = true
				heap.Push(pq, heapItem{node: v, dist: nd})
			}
		}
	}

	// Convert reduced-cost distances back to true distances.
	for n, d := range dist {
		if reachable[n] {
			dist[n] = d - potential[source] + potential[n]
		}
	}

	return &ShortestPathResult{Distances: dist, Parent: parent, Reachable: reachable}
}
