package deltastep

import (
	"github.com/mfreeman451/routepath/bucketq"
	"github.com/mfreeman451/routepath/csr"
)

// Serial runs the reference single-threaded delta-stepping loop over c from
// src, with bucket width delta. It performs a full single-source
// computation. It does not stop early when dest is reached, so callers
// can compare its result against dijkstra.Oracle bit-for-bit (spec §8 P4).
//
// Grounded on original_source/src/main_serial_delta.c:deltaStepping.
func Serial(c *csr.CSR, src int32, delta float64) Result {
	n := c.NumNodes()
	res := newResult(n, src)

	var buckets bucketq.Queue
	buckets.Append(0, src)

	for b := 0; b < buckets.NumBuckets(); b++ {
		for _, node := range buckets.Snapshot(b) {
			start, end := c.Edges(node)
			for e := start; e < end; e++ {
				m := c.Destinations[e]
				nd := res.Dist[node] + c.Weights[e]
				if nd < res.Dist[m] {
					res.Dist[m] = nd
					res.Prev[m] = node

					nb := int(nd / delta)
					if nb <= b {
						nb = b + 1
					}
					buckets.Append(nb, m)
				}
			}
		}
	}

	return res
}
