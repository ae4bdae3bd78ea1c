// Package deltastep implements the delta-stepping shortest-path relaxation
// loop over a csr.CSR, in the two coupled flavors spec.md §4.6/§4.7 call
// for: a single-threaded reference loop (Serial) and a data-parallel loop
// (Parallel) that fans one goroutine out per node in a bucket, the Go
// stand-in for original_source/src/main_parallel.c's OpenCL kernel launch.
//
// Both share the same tentative-distance/predecessor contract: dist starts
// at +Inf for every node except src (0), prev starts at -1 for every node.
// Once the outer bucket index has advanced past b, no node is ever
// (re-)appended to bucket b or earlier: the "never reopen" rule spec §4.6
// picks over the textbook light/heavy two-pass variant.
package deltastep

import (
	"math"
)

// NoPredecessor is the sentinel prev[] value for the source node and for
// any node never reached.
const NoPredecessor int32 = -1

// DefaultDelta is the bucket-width default spec §4.6 names: a tunable with
// no correctness dependence on its value.
const DefaultDelta = 40.0

// Result holds the tentative-distance and predecessor arrays produced by a
// full single-source relaxation pass.
type Result struct {
	Dist []float64
	Prev []int32
}

func newResult(n int, src int32) Result {
	dist := make([]float64, n)
	prev := make([]int32, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = NoPredecessor
	}
	dist[src] = 0
	return Result{Dist: dist, Prev: prev}
}
