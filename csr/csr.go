// Package csr flattens an adjacency list into a compressed-sparse-row
// layout: one offsets array plus two parallel edge-attribute arrays, the
// shape original_source/src/main_parallel.c builds (by hand, with
// realloc-doubling) to hand off to an OpenCL kernel. Go's slice growth
// replaces the manual doubling; the Build below still shrinks to the exact
// edge count at the end, preserving spec.md §4.4's memory contract.
package csr

import "github.com/mfreeman451/routepath/graph"

// CSR is the three-array flattening of an adjacency list.
//
// Offsets has length N+1: Offsets[i] is where node i's outgoing edges
// begin in Destinations/Weights; Offsets[N] == len(Destinations).
type CSR struct {
	Offsets      []int32
	Destinations []int32
	Weights      []float64
}

// NumNodes returns N, the number of vertices the CSR was built from.
func (c *CSR) NumNodes() int { return len(c.Offsets) - 1 }

// NumEdges returns E, the total number of directed adjacency entries.
func (c *CSR) NumEdges() int { return len(c.Destinations) }

// Edges returns the half-open [start, end) edge range for node i.
func (c *CSR) Edges(i int32) (start, end int32) {
	return c.Offsets[i], c.Offsets[i+1]
}

// Build flattens g into a CSR triple. Nodes are visited in index order;
// the initial edge-array capacity is 2*N per spec §4.4, grown by Go's
// normal append doubling, then trimmed to the exact edge count.
func Build(g *graph.Graph) *CSR {
	n := g.NumNodes()
	offsets := make([]int32, n+1)

	initialCap := 2 * n
	if initialCap == 0 {
		initialCap = 1
	}
	destinations := make([]int32, 0, initialCap)
	weights := make([]float64, 0, initialCap)

	var running int32
	for i := 0; i < n; i++ {
		offsets[i] = running
		for _, e := range g.Adj(int32(i)) {
			destinations = append(destinations, e.To)
			weights = append(weights, e.Weight)
			running++
		}
	}
	offsets[n] = running

	// Shrink to exact size: copy into freshly allocated exact-length slices
	// so the result doesn't carry unused append headroom past this
	// function's return.
	exactDest := make([]int32, len(destinations))
	copy(exactDest, destinations)
	exactWeights := make([]float64, len(weights))
	copy(exactWeights, weights)

	return &CSR{
		Offsets:      offsets,
		Destinations: exactDest,
		Weights:      exactWeights,
	}
}
