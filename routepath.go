// Package routepath computes a single-source shortest path between two
// geographic points over a road network, wiring together graph
// construction (graph), CSR flattening (csr), and the delta-stepping
// relaxation loop (deltastep) behind one request-shaped API. It plays the
// role of original_source/src/main_serial_delta.c's main(), minus the
// CLI/network plumbing that lives in cmd/ and httpapi.
package routepath

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mfreeman451/routepath/csr"
	"github.com/mfreeman451/routepath/deltastep"
	"github.com/mfreeman451/routepath/dijkstra"
	"github.com/mfreeman451/routepath/graph"
)

// Algorithm selects which shortest-path engine Compute dispatches to.
type Algorithm string

const (
	AlgorithmSerial   Algorithm = "serial"
	AlgorithmParallel Algorithm = "parallel"
	AlgorithmDijkstra Algorithm = "dijkstra"
)

// ErrUnreachableDestination is the taxonomy-4 error from spec.md §7: the
// destination index exists but dist[dest] stayed +Inf.
var ErrUnreachableDestination = errors.New("routepath: destination unreachable")

// ErrUnknownAlgorithm is returned when Options.Algorithm names neither
// "serial", "parallel", nor "dijkstra".
var ErrUnknownAlgorithm = errors.New("routepath: unknown algorithm")

// Point is a (lat, lon) pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Options configures one Compute call.
type Options struct {
	// Algorithm picks the shortest-path engine. Defaults to AlgorithmSerial
	// if empty.
	Algorithm Algorithm
	// Delta is the bucket-width parameter for the delta-stepping variants.
	// Defaults to deltastep.DefaultDelta if zero.
	Delta float64
}

// Result is the outcome of one Compute call: the ordered polyline from
// source to destination, its total length in meters, and which node
// indices src/dest resolved to.
type Result struct {
	Route     []Point
	LengthM   float64
	SourceIdx int32
	DestIdx   int32
}

// Compute resolves srcIdx/destIdx against g's CSR flattening c, runs the
// selected delta-stepping variant (or the Dijkstra oracle), and reconstructs
// the path (C9 of spec.md §4.9), preceded by the dispatch step describing
// the "algorithm" field of the §6 POST /run contract.
func Compute(ctx context.Context, g *graph.Graph, c *csr.CSR, srcIdx, destIdx int32, opts Options) (Result, error) {
	algo := opts.Algorithm
	if algo == "" {
		algo = AlgorithmSerial
	}
	delta := opts.Delta
	if delta == 0 {
		delta = deltastep.DefaultDelta
	}

	var dist []float64
	var prev []int32

	switch algo {
	case AlgorithmSerial:
		res := deltastep.Serial(c, srcIdx, delta)
		dist, prev = res.Dist, res.Prev
	case AlgorithmParallel:
		res, err := deltastep.Parallel(ctx, c, srcIdx, delta)
		if err != nil {
			return Result{}, fmt.Errorf("routepath: parallel relaxation: %w", err)
		}
		dist, prev = res.Dist, res.Prev
	case AlgorithmDijkstra:
		res := dijkstra.Oracle(c, srcIdx)
		dist, prev = res.Dist, res.Prev
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}

	if math.IsInf(dist[destIdx], 1) {
		return Result{}, fmt.Errorf("%w: node index %d", ErrUnreachableDestination, destIdx)
	}

	indices, err := reconstruct(prev, srcIdx, destIdx)
	if err != nil {
		return Result{}, err
	}

	route := make([]Point, len(indices))
	for i, idx := range indices {
		n := g.Nodes[idx]
		route[i] = Point{Lat: n.Lat, Lon: n.Lon}
	}

	return Result{
		Route:     route,
		LengthM:   dist[destIdx],
		SourceIdx: srcIdx,
		DestIdx:   destIdx,
	}, nil
}
