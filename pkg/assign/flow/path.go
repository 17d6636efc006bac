package flow

import "reviewmatch/pkg/domain"

// reconstructPath walks parent pointers from sink back to source.
func reconstructPath(parent map[int64]int64, source, sink int64) []int64 {
	path := []int64{sink}
	cur := sink
	for cur != source {
		prev, ok := parent[cur]
		if !ok {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// pathCapacity returns the minimum residual capacity along path.
func pathCapacity(g *Graph, path []int64) float64 {
	cap := domain.Infinity
	for i := 0; i < len(path)-1; i++ {
		e := findEdge(g, path[i], path[i+1])
		if e == nil {
			return 0
		}
		if e.Capacity < cap {
			cap = e.Capacity
		}
	}
	return cap
}

func findEdge(g *Graph, from, to int64) *Edge {
	for _, e := range g.edges[from] {
		if e.To == to {
			return e
		}
	}
	return nil
}

// augmentPath pushes flow units of flow along path.
func augmentPath(g *Graph, path []int64, flow float64) {
	for i := 0; i < len(path)-1; i++ {
		e := findEdge(g, path[i], path[i+1])
		g.UpdateFlow(path[i], e, flow)
	}
}
