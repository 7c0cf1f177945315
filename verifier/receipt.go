package verifier

import (
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/pkg/errors"
)

// VerifyReceiptProof resolves the receipt at txIndex in the receipt trie
// rooted at root from the given proof nodes.
func VerifyReceiptProof(root common.Hash, txIndex uint64, proof [][]byte) (*ethtypes.Receipt, error) {
	db := memorydb.New()
	for _, node := range proof {
		if err := db.Put(crypto.Keccak256(node), node); err != nil {
			return nil, err
		}
	}
	key, err := rlp.EncodeToBytes(txIndex)
	if err != nil {
		return nil, err
	}
	value, err := trie.VerifyProof(root, key, db)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidReceiptProof, "%v", err)
	}
	if value == nil {
		return nil, errors.Wrapf(ErrInvalidReceiptProof, "no receipt at index %d", txIndex)
	}
	receipt := new(ethtypes.Receipt)
	if err := receipt.UnmarshalBinary(value); err != nil {
		return nil, errors.Wrapf(ErrInvalidReceiptProof, "could not decode receipt: %v", err)
	}
	return receipt, nil
}
