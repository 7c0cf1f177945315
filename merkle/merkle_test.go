package merkle_test

import (
	"math/rand"
	"testing"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/merkle"
	gethmerkle "github.com/ethereum/go-ethereum/beacon/merkle"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func randomLeaves(rng *rand.Rand, n int) []common.Hash {
	leaves := make([]common.Hash, n)
	for i := range leaves {
		rng.Read(leaves[i][:])
	}
	return leaves
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for depth := 1; depth <= 8; depth++ {
		leaves := randomLeaves(rng, 1<<uint(depth))
		tree, err := merkle.NewTree(leaves, depth)
		require.NoError(t, err)
		for _, index := range []int{0, len(leaves) - 1, rng.Intn(len(leaves))} {
			branch, err := tree.Proof(index)
			require.NoError(t, err)
			gindex := tree.GeneralizedIndex(index)
			require.NoError(t, merkle.VerifyBranch(leaves[index], branch, gindex, tree.Root()))
		}
	}
}

func TestSingleBitFlipFails(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	leaves := randomLeaves(rng, 32)
	tree, err := merkle.NewTree(leaves, 5)
	require.NoError(t, err)

	index := 22
	branch, err := tree.Proof(index)
	require.NoError(t, err)
	gindex := tree.GeneralizedIndex(index)

	for node := range branch {
		for bit := 0; bit < 256; bit += 37 {
			tampered := append([]common.Hash(nil), branch...)
			tampered[node][bit/8] ^= 1 << uint(bit%8)
			err := merkle.VerifyBranch(leaves[index], tampered, gindex, tree.Root())
			require.True(t, errors.Is(err, merkle.ErrProofMismatch), "node %d bit %d", node, bit)
		}
	}
	leaf := leaves[index]
	leaf[0] ^= 1
	require.False(t, merkle.IsValidBranch(leaf, branch, gindex, tree.Root()))
}

func TestBranchLength(t *testing.T) {
	leaves := randomLeaves(rand.New(rand.NewSource(3)), 64)
	tree, err := merkle.NewTree(leaves, 6)
	require.NoError(t, err)
	branch, err := tree.Proof(41)
	require.NoError(t, err)

	err = merkle.VerifyBranch(leaves[41], branch[:5], 105, tree.Root())
	require.True(t, errors.Is(err, merkle.ErrBranchLength))
	err = merkle.VerifyBranch(leaves[41], append(branch, common.Hash{}), 105, tree.Root())
	require.True(t, errors.Is(err, merkle.ErrBranchLength))
	err = merkle.VerifyBranch(leaves[41], nil, 0, tree.Root())
	require.True(t, errors.Is(err, merkle.ErrBranchLength))
	require.NoError(t, merkle.VerifyBranch(leaves[41], branch, 105, tree.Root()))
}

func TestMatchesGethBeaconMerkle(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	leaves := randomLeaves(rng, 32)
	tree, err := merkle.NewTree(leaves, 5)
	require.NoError(t, err)

	for _, index := range []int{22, 23} {
		branch, err := tree.Proof(index)
		require.NoError(t, err)
		values := make(gethmerkle.Values, len(branch))
		for i, node := range branch {
			values[i] = gethmerkle.Value(node)
		}
		gindex := tree.GeneralizedIndex(index)
		require.NoError(t, gethmerkle.VerifyProof(tree.Root(), gindex, values, gethmerkle.Value(leaves[index])))
		require.NoError(t, merkle.VerifyBranch(leaves[index], branch, gindex, tree.Root()))
	}
}

func TestConcat(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	// checkpoint container: epoch and root
	inner := randomLeaves(rng, 2)
	innerTree, err := merkle.NewTree(inner, 1)
	require.NoError(t, err)

	fields := randomLeaves(rng, 32)
	fields[20] = innerTree.Root()
	outerTree, err := merkle.NewTree(fields, 5)
	require.NoError(t, err)

	innerProof, err := innerTree.Proof(1)
	require.NoError(t, err)
	outerProof, err := outerTree.Proof(20)
	require.NoError(t, err)

	branch, gindex := merkle.Concat(innerProof, innerTree.GeneralizedIndex(1), outerProof, outerTree.GeneralizedIndex(20))
	require.Equal(t, uint64(105), gindex)
	require.Len(t, branch, 6)
	require.NoError(t, merkle.VerifyBranch(inner[1], branch, gindex, outerTree.Root()))
}

func TestNewTreeErrors(t *testing.T) {
	_, err := merkle.NewTree(make([]common.Hash, 5), 2)
	require.Error(t, err)
	_, err = merkle.NewTree(nil, -1)
	require.Error(t, err)

	tree, err := merkle.NewTree(nil, 2)
	require.NoError(t, err)
	_, err = tree.Proof(4)
	require.Error(t, err)
}
