// Package dijkstra implements a priority-free linear-scan Dijkstra over a
// csr.CSR, used purely as a correctness oracle for deltastep (spec.md §4.8).
// It is deliberately O(N^2): scanning for the unvisited minimum rather than
// using a heap is a simplicity choice for a test oracle, not a performance
// path. See DESIGN.md for why this does not reuse a heap-based shape.
package dijkstra

import (
	"math"

	"github.com/mfreeman451/routepath/csr"
	"github.com/mfreeman451/routepath/deltastep"
)

// Oracle computes shortest distances from src to every node in c by plain
// Dijkstra, stopping once every reachable node has been finalized.
func Oracle(c *csr.CSR, src int32) deltastep.Result {
	n := c.NumNodes()
	dist := make([]float64, n)
	prev := make([]int32, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = deltastep.NoPredecessor
	}
	dist[src] = 0

	for {
		u := int32(-1)
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !visited[i] && dist[i] < best {
				best = dist[i]
				u = int32(i)
			}
		}
		if u == -1 || math.IsInf(best, 1) {
			break
		}
		visited[u] = true

		start, end := c.Edges(u)
		for e := start; e < end; e++ {
			m := c.Destinations[e]
			nd := dist[u] + c.Weights[e]
			if nd < dist[m] {
				dist[m] = nd
				prev[m] = u
			}
		}
	}

	return deltastep.Result{Dist: dist, Prev: prev}
}
