package flow

import (
	"context"

	"reviewmatch/pkg/domain"
)

// Result is what a min-cost flow solve reports back to MinMax/FairFlow.
type Result struct {
	Flow       float64
	Cost       float64
	Iterations int
	Canceled   bool
}

// computeReinitInterval decides how often potentials are recomputed from
// scratch via a full Bellman-Ford pass instead of being carried forward
// incrementally. Larger graphs drift further between full reseeds are
// worth avoiding, so the interval shrinks as the graph grows.
func computeReinitInterval(nodeCount int) int {
	switch {
	case nodeCount > 5000:
		return 20
	case nodeCount > 500:
		return 50
	default:
		return 200
	}
}

// SuccessiveShortestPath augments flow from source to sink one shortest
// augmenting path at a time until either requiredFlow units have been
// pushed or no augmenting path remains. Node potentials are seeded with
// one Bellman-Ford pass (tolerates the graph's negative mandatory-leg
// costs) and then maintained via Dijkstra with reduced costs, which is
// what makes repeated augmentation over a graph with thousands of edges
// tractable. Context is checked inside every shortest-path pass and on
// every fifth iteration of the outer augmenting loop.
func SuccessiveShortestPath(ctx context.Context, g *Graph, source, sink int64, requiredFlow float64) Result {
	nodeCount := g.NodeCount()
	reinitInterval := computeReinitInterval(nodeCount)

	potential := make(map[int64]float64)
	seed := bellmanFord(ctx, g, source)
	if seed.Canceled {
		return Result{Canceled: true}
	}
	for n, d := range seed.Distances {
		if d == domain.Infinity {
			potential[n] = 0
		} else {
			potential[n] = d
		}
	}

	var totalFlow, totalCost float64
	iterations := 0

	for totalFlow < requiredFlow-domain.Epsilon {
		iterations++
		if iterations%5 == 0 {
			select {
			case <-ctx.Done():
				return Result{Flow: totalFlow, Cost: totalCost, Iterations: iterations, Canceled: true}
			default:
			}
		}

		var spResult *ShortestPathResult
		if iterations%reinitInterval == 0 {
			spResult = bellmanFord(ctx, g, source)
			for n, d := range spResult.Distances {
				if d != domain.Infinity {
					potential[n] = d
				}
			}
		} else {
			spResult = dijkstraWithPotentials(ctx, g, source, potential)
			for n := range potential {
				if d, ok := spResult.Distances[n]; ok && spResult.Reachable[n] {
					potential[n] = d
				}
			}
		}
		if spResult.Canceled {
			return Result{Flow: totalFlow, Cost: totalCost, Iterations: iterations, Canceled: true}
		}

		if !spResult.Reachable[sink] {
			break
		}

		path := reconstructPath(spResult.Parent, source, sink)
		if path == nil {
			break
		}

		bottleneck := pathCapacity(g, path)
		if bottleneck <= domain.Epsilon {
			break
		}

		push := bottleneck
		if totalFlow+push > requiredFlow {
			push = requiredFlow - totalFlow
		}

		pathCost := computePathCost(g, path)
		augmentPath(g, path, push)
		totalFlow += push
		totalCost += pathCost * push
	}

	return Result{Flow: totalFlow, Cost: totalCost, Iterations: iterations}
}

func computePathCost(g *Graph, path []int64) float64 {
	total := 0.0
	for i := 0; i < len(path)-1; i++ {
		e := findEdge(g, path[i], path[i+1])
		if e != nil {
			total += e.Cost
		}
	}
	return total
}
