// Package graph assembles an undirected, geodesically-weighted adjacency
// list from a set of nodes and ways, the way original_source/src/graph_utils.c
// builds its linked-list graph, but resolving node ids to indices through a
// hash map instead of a per-edge linear scan (spec.md §9).
package graph

import (
	"fmt"
	"io"

	"github.com/mfreeman451/routepath/geo"
)

// NodeID is a stable, externally-assigned 64-bit vertex identifier.
type NodeID int64

// Node is a graph vertex: its identity is ID; its position among the
// internal arrays is the index it is assigned during ingestion.
type Node struct {
	ID  NodeID
	Lat float64
	Lon float64
}

// Way is an input-only ordered sequence of node ids. Consecutive pairs
// become edges; ways are discarded once the graph is built.
type Way struct {
	ID    int64
	Nodes []NodeID
}

// Edge is a single directed adjacency-list entry: every undirected edge of
// the graph appears as two Edge values, one in each endpoint's chain.
type Edge struct {
	To     int32
	Weight float64
}

// Graph is the adjacency-list representation built from Nodes and Ways.
// Edges are never mutated after Build returns.
type Graph struct {
	Nodes []Node
	adj   [][]Edge
	index map[NodeID]int32
}

// Adj returns the outgoing edge chain for the node at index i.
func (g *Graph) Adj(i int32) []Edge { return g.adj[i] }

// NumNodes returns the number of vertices in the graph.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// Build resolves every way's consecutive node-id pairs against nodes and
// appends a pair of undirected edge records for each resolvable pair. A
// node id referenced by a way but absent from nodes causes that edge
// candidate to be dropped; dropped is the count of such candidates. Build
// never fails outright: ingestion is tolerant of partial data per spec
// §4.2/§4.3.
func Build(nodes []Node, ways []Way) (g *Graph, dropped int) {
	index := make(map[NodeID]int32, len(nodes))
	for i, n := range nodes {
		index[n.ID] = int32(i)
	}

	g = &Graph{
		Nodes: nodes,
		adj:   make([][]Edge, len(nodes)),
		index: index,
	}

	for _, way := range ways {
		for j := 0; j+1 < len(way.Nodes); j++ {
			id1, id2 := way.Nodes[j], way.Nodes[j+1]
			idx1, ok1 := index[id1]
			idx2, ok2 := index[id2]
			if !ok1 || !ok2 {
				dropped++
				continue
			}

			n1, n2 := nodes[idx1], nodes[idx2]
			weight := geo.HaversineMeters(n1.Lat, n1.Lon, n2.Lat, n2.Lon)

			g.adj[idx1] = append(g.adj[idx1], Edge{To: idx2, Weight: weight})
			g.adj[idx2] = append(g.adj[idx2], Edge{To: idx1, Weight: weight})
		}
	}

	return g, dropped
}

// IndexOf returns the internal index of id, or an error if id is not part
// of the graph's node set.
func (g *Graph) IndexOf(id NodeID) (int32, error) {
	if idx, ok := g.index[id]; ok {
		return idx, nil
	}
	return -1, fmt.Errorf("graph: node id %d not found", id)
}

// DumpMermaid writes the graph as a Mermaid flowchart, one node per line
// followed by its outgoing edges. A debug aid, never on the request
// path. Grounded on original_source/src/graph_utils.c's
// writeGraphToMermaidFile, which writes the same shape to graph.md.
func (g *Graph) DumpMermaid(w io.Writer) error {
	if _, err := io.WriteString(w, "```mermaid\ngraph TD\n"); err != nil {
		return err
	}

	for i, n := range g.Nodes {
		if _, err := fmt.Fprintf(w, "    %d[\"Node %d (%d)<br/>(%.6f, %.6f)\"]\n", n.ID, n.ID, i, n.Lat, n.Lon); err != nil {
			return err
		}
		for _, e := range g.adj[i] {
			if _, err := fmt.Fprintf(w, "    %d -->|%.2fm| %d\n", n.ID, e.Weight, g.Nodes[e.To].ID); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, "```\n")
	return err
}
