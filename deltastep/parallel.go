package deltastep

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mfreeman451/routepath/bucketq"
	"github.com/mfreeman451/routepath/csr"
)

// ErrDeviceFailure wraps any failure in the data-parallel relaxation loop.
// Spec §4.7/§7 treats these as fatal, with no fallback to Serial.
type ErrDeviceFailure struct {
	Bucket int
	Err    error
}

func (e *ErrDeviceFailure) Error() string {
	return fmt.Sprintf("deltastep: parallel relaxation failed at bucket %d: %v", e.Bucket, e.Err)
}

func (e *ErrDeviceFailure) Unwrap() error { return e.Err }

// Parallel runs the data-parallel delta-stepping loop: each outer bucket
// iteration launches one goroutine per node in the bucket's snapshot,
// bounded by GOMAXPROCS, the way original_source/src/main_parallel.c
// launches one OpenCL work-item per bucket node. Work-items relax edges
// into a shared dist/prev/pending state; races between them are tolerated
// (spec §4.7/§5/§9 open question 4). dist is updated through an atomic
// compare-and-swap loop so the minimum always wins, while prev is set by a
// separate atomic store after a successful CAS, not in the same atomic step
// as dist; spec declares a stale prev paired with a winning dist benign as
// long as dist itself stabilizes.
//
// Between iterations the host (this function, single-threaded at that
// point) scans pending and moves every non-sentinel entry into its bucket,
// exactly the two synchronization barriers spec §4.7 describes: "upload
// bucket contents" before launch, "download pending" after.
func Parallel(ctx context.Context, c *csr.CSR, src int32, delta float64) (Result, error) {
	n := c.NumNodes()
	res := newResult(n, src)

	distBits := make([]atomic.Uint64, n)
	distBits[src].Store(0)
	for i := 0; i < n; i++ {
		if int32(i) == src {
			continue
		}
		distBits[i].Store(math.Float64bits(math.Inf(1)))
	}
	prev := make([]atomic.Int32, n)
	for i := range prev {
		prev[i].Store(NoPredecessor)
	}
	pending := make([]atomic.Int32, n)
	for i := range pending {
		pending[i].Store(NoPredecessor)
	}

	var buckets bucketq.Queue
	buckets.Append(0, src)

	limit := runtime.GOMAXPROCS(0)
	if limit < 1 {
		limit = 1
	}

	for b := 0; b < buckets.NumBuckets(); b++ {
		nodes := buckets.Snapshot(b)
		if len(nodes) == 0 {
			continue
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)

		for _, node := range nodes {
			node := node
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				return relaxWorkItem(c, delta, b, node, distBits, prev, pending)
			})
		}

		if err := g.Wait(); err != nil {
			return Result{}, &ErrDeviceFailure{Bucket: b, Err: err}
		}

		// Synchronization barrier: scan pending, move entries to buckets.
		for i := 0; i < n; i++ {
			nb := pending[i].Swap(NoPredecessor)
			if nb != NoPredecessor {
				buckets.Append(int(nb), int32(i))
			}
		}
	}

	for i := 0; i < n; i++ {
		res.Dist[i] = math.Float64frombits(distBits[i].Load())
		res.Prev[i] = prev[i].Load()
	}

	return res, nil
}

// relaxWorkItem processes node's outgoing edges. The Go body of
// main_parallel.c's process_bucket_nodes kernel.
func relaxWorkItem(c *csr.CSR, delta float64, bucket int, node int32, distBits []atomic.Uint64, prev, pending []atomic.Int32) error {
	start, end := c.Edges(node)
	nodeDist := math.Float64frombits(distBits[node].Load())

	for e := start; e < end; e++ {
		m := c.Destinations[e]
		nd := nodeDist + c.Weights[e]

		for {
			cur := distBits[m].Load()
			curDist := math.Float64frombits(cur)
			if nd >= curDist {
				break
			}
			if distBits[m].CompareAndSwap(cur, math.Float64bits(nd)) {
				prev[m].Store(node)

				nb := int32(nd / delta)
				if nb <= int32(bucket) {
					nb = int32(bucket) + 1
				}
				pending[m].Store(nb)
				break
			}
			// Lost the race. Reread and retry if still an improvement.
		}
	}

	return nil
}
