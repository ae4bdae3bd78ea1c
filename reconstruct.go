package routepath

import (
	"errors"
	"fmt"
)

// ErrCycleDetected is an invariant-violation (spec §7 taxonomy 6): the
// predecessor walk visited the same node twice, meaning prev[] is
// structurally corrupt.
var ErrCycleDetected = errors.New("routepath: cycle detected while reconstructing path")

// reconstruct walks prev backwards from dest to src, emitting the node
// index sequence (src, ..., dest) in forward order, per spec.md §4.9.
// Visiting the same predecessor twice is treated defensively as structural
// corruption rather than looping forever.
func reconstruct(prev []int32, src, dest int32) ([]int32, error) {
	seen := make(map[int32]bool, len(prev))
	var reversed []int32

	cur := dest
	for {
		if seen[cur] {
			return nil, fmt.Errorf("%w: node index %d revisited", ErrCycleDetected, cur)
		}
		seen[cur] = true
		reversed = append(reversed, cur)

		if cur == src {
			break
		}
		if len(reversed) > len(prev) {
			return nil, fmt.Errorf("%w: predecessor chain exceeds node count", ErrCycleDetected)
		}

		p := prev[cur]
		if p < 0 {
			return nil, fmt.Errorf("%w: reached sentinel predecessor before src", ErrUnreachableDestination)
		}
		cur = p
	}

	forward := make([]int32, len(reversed))
	for i, idx := range reversed {
		forward[len(reversed)-1-i] = idx
	}
	return forward, nil
}
