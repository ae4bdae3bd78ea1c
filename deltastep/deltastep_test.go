package deltastep_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/routepath/csr"
	"github.com/mfreeman451/routepath/deltastep"
	"github.com/mfreeman451/routepath/dijkstra"
	"github.com/mfreeman451/routepath/graph"
)

// buildWeighted builds a CSR directly from adjacency triples without going
// through geo-derived weights, for scenarios that specify exact weights.
func buildWeighted(n int, edges [][3]float64) *csr.CSR {
	adj := make([][]graph.Edge, n)
	for _, e := range edges {
		u, v, w := int32(e[0]), int32(e[1]), e[2]
		adj[u] = append(adj[u], graph.Edge{To: v, Weight: w})
		adj[v] = append(adj[v], graph.Edge{To: u, Weight: w})
	}
	offsets := make([]int32, n+1)
	var dest []int32
	var weights []float64
	var running int32
	for i := 0; i < n; i++ {
		offsets[i] = running
		for _, e := range adj[i] {
			dest = append(dest, e.To)
			weights = append(weights, e.Weight)
			running++
		}
	}
	offsets[n] = running
	return &csr.CSR{Offsets: offsets, Destinations: dest, Weights: weights}
}

func TestSerial_TrivialChain(t *testing.T) {
	c := buildWeighted(5, [][3]float64{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 4, 1}})
	res := deltastep.Serial(c, 0, 1)

	require.Equal(t, []float64{0, 1, 2, 3, 4}, res.Dist)
	require.Equal(t, []int32{-1, 0, 1, 2, 3}, res.Prev)
}

func TestSerial_Diamond(t *testing.T) {
	c := buildWeighted(4, [][3]float64{{0, 1, 1}, {0, 2, 5}, {1, 3, 1}, {2, 3, 1}})
	res := deltastep.Serial(c, 0, 2)

	require.InDelta(t, 2.0, res.Dist[3], 1e-9)
	require.Equal(t, int32(1), res.Prev[3])
	require.Equal(t, int32(0), res.Prev[1])
}

func TestSerial_DisconnectedDestinationUnreachable(t *testing.T) {
	c := buildWeighted(3, [][3]float64{{0, 1, 1}})
	res := deltastep.Serial(c, 0, 1)

	require.Equal(t, []float64{0, 1, math.Inf(1)}, res.Dist)
}

func TestSerial_ParallelEdgesMinimumWins(t *testing.T) {
	c := buildWeighted(2, [][3]float64{{0, 1, 5}, {0, 1, 3}})
	res := deltastep.Serial(c, 0, 1)

	require.InDelta(t, 3.0, res.Dist[1], 1e-9)
}

func TestSerial_DeltaBoundary(t *testing.T) {
	delta := 2.0
	c := buildWeighted(3, [][3]float64{{0, 1, delta}, {1, 2, delta}})
	res := deltastep.Serial(c, 0, delta)

	require.InDelta(t, 2*delta, res.Dist[2], 1e-9)
}

func TestSerial_SelfLoopNeverImproves(t *testing.T) {
	c := buildWeighted(2, [][3]float64{{0, 0, 0}, {0, 1, 4}})
	res := deltastep.Serial(c, 0, 1)
	require.InDelta(t, 4.0, res.Dist[1], 1e-9)
	require.Equal(t, int32(-1), res.Prev[0])
}

func TestParallel_MatchesSerial(t *testing.T) {
	c := buildWeighted(5, [][3]float64{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 4, 1}, {0, 2, 10}})
	serialRes := deltastep.Serial(c, 0, 1)
	parallelRes, err := deltastep.Parallel(context.Background(), c, 0, 1)
	require.NoError(t, err)

	for i := range serialRes.Dist {
		require.InDelta(t, serialRes.Dist[i], parallelRes.Dist[i], 1e-9, "node %d", i)
	}
}

func TestParallel_Idempotent(t *testing.T) {
	c := buildWeighted(6, [][3]float64{
		{0, 1, 3}, {1, 2, 1}, {0, 2, 5}, {2, 3, 2}, {3, 4, 1}, {4, 5, 7}, {1, 5, 20},
	})

	first, err := deltastep.Parallel(context.Background(), c, 0, deltastep.DefaultDelta)
	require.NoError(t, err)
	second, err := deltastep.Parallel(context.Background(), c, 0, deltastep.DefaultDelta)
	require.NoError(t, err)

	require.Equal(t, first.Dist, second.Dist)
	require.Equal(t, first.Prev, second.Prev)
}

func TestSerial_Idempotent(t *testing.T) {
	c := buildWeighted(6, [][3]float64{
		{0, 1, 3}, {1, 2, 1}, {0, 2, 5}, {2, 3, 2}, {3, 4, 1}, {4, 5, 7}, {1, 5, 20},
	})

	first := deltastep.Serial(c, 0, deltastep.DefaultDelta)
	second := deltastep.Serial(c, 0, deltastep.DefaultDelta)

	require.Equal(t, first.Dist, second.Dist)
	require.Equal(t, first.Prev, second.Prev)
}

// TestSerial_MatchesOracleWithinBandRelaxation exercises relaxations that
// stay inside the discovering bucket's band at the default delta (spec §8
// P4): road-length edges well under DefaultDelta, so a node's bumped
// bucket assignment (deltastep.go's "never reopen" rule) must still have
// its outgoing edges relaxed on its later visit.
func TestSerial_MatchesOracleWithinBandRelaxation(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	const n = 40
	var edges [][3]float64
	for i := 1; i < n; i++ {
		parent := rng.Intn(i)
		edges = append(edges, [3]float64{float64(parent), float64(i), float64(1 + rng.Intn(30))})
	}
	for i := 0; i < n; i++ {
		u, v := rng.Intn(n), rng.Intn(n)
		if u == v {
			continue
		}
		edges = append(edges, [3]float64{float64(u), float64(v), float64(1 + rng.Intn(30))})
	}
	c := buildWeighted(n, edges)

	oracle := dijkstra.Oracle(c, 0)
	serial := deltastep.Serial(c, 0, deltastep.DefaultDelta)

	for i := 0; i < n; i++ {
		require.Equal(t, oracle.Dist[i], serial.Dist[i], "node %d", i)
	}
}
