package merkle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Tree is a complete binary tree over a fixed number of leaves. Missing
// leaves are zero.
type Tree struct {
	depth  int
	levels [][]common.Hash // levels[0] are the leaves, levels[depth] the root
}

// NewTree builds a tree of the given depth over leaves.
func NewTree(leaves []common.Hash, depth int) (*Tree, error) {
	if depth < 0 || depth > 32 {
		return nil, fmt.Errorf("invalid tree depth %d", depth)
	}
	width := 1 << uint(depth)
	if len(leaves) > width {
		return nil, fmt.Errorf("%d leaves do not fit a tree of depth %d", len(leaves), depth)
	}
	level := make([]common.Hash, width)
	copy(level, leaves)

	t := &Tree{depth: depth, levels: [][]common.Hash{level}}
	for len(level) > 1 {
		next := make([]common.Hash, len(level)/2)
		for i := range next {
			next[i] = HashNodes(level[2*i], level[2*i+1])
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t, nil
}

func (t *Tree) Root() common.Hash {
	return t.levels[t.depth][0]
}

// GeneralizedIndex returns the gindex of leaf index.
func (t *Tree) GeneralizedIndex(index int) uint64 {
	return uint64(1)<<uint(t.depth) + uint64(index)
}

// Proof returns the sibling path of leaf index, bottom up.
func (t *Tree) Proof(index int) ([]common.Hash, error) {
	if index < 0 || index >= len(t.levels[0]) {
		return nil, fmt.Errorf("leaf index %d out of range", index)
	}
	branch := make([]common.Hash, 0, t.depth)
	for d := 0; d < t.depth; d++ {
		branch = append(branch, t.levels[d][index^1])
		index >>= 1
	}
	return branch, nil
}

// Concat joins a proof inside a subtree with the proof of the subtree root
// in its parent tree, returning the combined gindex and branch.
func Concat(inner []common.Hash, innerIndex uint64, outer []common.Hash, outerIndex uint64) ([]common.Hash, uint64) {
	depth := Depth(innerIndex)
	gindex := outerIndex<<uint(depth) | (innerIndex - uint64(1)<<uint(depth))
	branch := make([]common.Hash, 0, len(inner)+len(outer))
	branch = append(branch, inner...)
	branch = append(branch, outer...)
	return branch, gindex
}
