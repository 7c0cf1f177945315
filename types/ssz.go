package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ssz "github.com/ferranbt/fastssz"
)

func hashTreeRoot(fn func(hh *ssz.Hasher) error) (common.Hash, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := fn(hh); err != nil {
		return common.Hash{}, err
	}
	root, err := hh.HashRoot()
	return common.Hash(root), err
}

// HashTreeRoot returns the SSZ root of the header.
func (h *BeaconBlockHeader) HashTreeRoot() (common.Hash, error) {
	return hashTreeRoot(h.hashTreeRootWith)
}

func (h *BeaconBlockHeader) hashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(h.Slot))
	hh.PutUint64(h.ProposerIndex)
	hh.PutBytes(h.ParentRoot[:])
	hh.PutBytes(h.StateRoot[:])
	hh.PutBytes(h.BodyRoot[:])
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot returns the SSZ root of the committee. The root commits to
// the number of keys, so committees of the wrong size never verify.
func (s *SyncCommittee) HashTreeRoot() (common.Hash, error) {
	return hashTreeRoot(s.hashTreeRootWith)
}

func (s *SyncCommittee) hashTreeRootWith(hh *ssz.Hasher) error {
	if len(s.Pubkeys) == 0 {
		return fmt.Errorf("empty sync committee")
	}
	indx := hh.Index()
	{
		subIndx := hh.Index()
		for _, pk := range s.Pubkeys {
			hh.PutBytes(pk[:])
		}
		hh.Merkleize(subIndx)
	}
	hh.PutBytes(s.AggregatePubkey[:])
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot returns the SSZ root of the fork data.
func (f *ForkData) HashTreeRoot() (common.Hash, error) {
	return hashTreeRoot(func(hh *ssz.Hasher) error {
		indx := hh.Index()
		hh.PutBytes(f.CurrentVersion[:])
		hh.PutBytes(f.GenesisValidatorsRoot[:])
		hh.Merkleize(indx)
		return nil
	})
}

// HashTreeRoot returns the SSZ root of the signing data.
func (s *SigningData) HashTreeRoot() (common.Hash, error) {
	return hashTreeRoot(func(hh *ssz.Hasher) error {
		indx := hh.Index()
		hh.PutBytes(s.ObjectRoot[:])
		hh.PutBytes(s.Domain[:])
		hh.Merkleize(indx)
		return nil
	})
}

// HashTreeRoot returns the SSZ root of the Capella execution payload header.
func (e *ExecutionPayloadHeader) HashTreeRoot() (common.Hash, error) {
	return hashTreeRoot(e.hashTreeRootWith)
}

func (e *ExecutionPayloadHeader) hashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutBytes(e.ParentHash[:])
	hh.PutBytes(e.FeeRecipient[:])
	hh.PutBytes(e.StateRoot[:])
	hh.PutBytes(e.ReceiptsRoot[:])
	hh.PutBytes(e.LogsBloom[:])
	hh.PutBytes(e.PrevRandao[:])
	hh.PutUint64(e.BlockNumber)
	hh.PutUint64(e.GasLimit)
	hh.PutUint64(e.GasUsed)
	hh.PutUint64(e.Timestamp)
	{
		elemIndx := hh.Index()
		byteLen := uint64(len(e.ExtraData))
		if byteLen > MaxExtraDataBytes {
			return fmt.Errorf("extra data too long: %d bytes", byteLen)
		}
		hh.PutBytes(e.ExtraData)
		hh.MerkleizeWithMixin(elemIndx, byteLen, (MaxExtraDataBytes+31)/32)
	}
	{
		// uint256 is hashed little endian
		var fee [32]byte
		if e.BaseFeePerGas != nil {
			be := e.BaseFeePerGas.Bytes32()
			for i := range be {
				fee[i] = be[31-i]
			}
		}
		hh.PutBytes(fee[:])
	}
	hh.PutBytes(e.BlockHash[:])
	hh.PutBytes(e.TransactionsRoot[:])
	hh.PutBytes(e.WithdrawalsRoot[:])
	hh.Merkleize(indx)
	return nil
}
