// Package merkle verifies and builds binary SHA-256 Merkle branches as used
// by SSZ generalized indices.
package merkle

import (
	"math/bits"

	"github.com/ethereum/go-ethereum/common"
	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
)

var (
	ErrBranchLength  = errors.New("merkle branch length does not match generalized index depth")
	ErrProofMismatch = errors.New("merkle branch does not reduce to root")
)

// Depth returns the branch length required for gindex.
func Depth(gindex uint64) int {
	if gindex == 0 {
		return 0
	}
	return bits.Len64(gindex) - 1
}

// HashNodes returns sha256(a ‖ b).
func HashNodes(a, b common.Hash) common.Hash {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return sha256.Sum256(buf[:])
}

// VerifyBranch checks that leaf sits at gindex in the tree rooted at root.
// Bit i of gindex tells whether the node at level i is a left (0) or right
// (1) child.
func VerifyBranch(leaf common.Hash, branch []common.Hash, gindex uint64, root common.Hash) error {
	if depth := Depth(gindex); gindex == 0 || len(branch) != depth {
		return errors.Wrapf(ErrBranchLength, "gindex %d wants %d nodes, have %d", gindex, depth, len(branch))
	}
	value := leaf
	for i, sibling := range branch {
		if (gindex>>uint(i))&1 == 0 {
			value = HashNodes(value, sibling)
		} else {
			value = HashNodes(sibling, value)
		}
	}
	if value != root {
		return errors.Wrapf(ErrProofMismatch, "computed %x, want %x", value, root)
	}
	return nil
}

// IsValidBranch is VerifyBranch as a predicate.
func IsValidBranch(leaf common.Hash, branch []common.Hash, gindex uint64, root common.Hash) bool {
	return VerifyBranch(leaf, branch, gindex, root) == nil
}
