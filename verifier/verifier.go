// Package verifier checks that bridge messages were emitted on the execution
// chain, proving the emitting receipt against a trusted execution header.
package verifier

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

var log = logrus.WithField("prefix", "verifier")

var (
	ErrHeaderNotFound      = errors.New("execution header not found")
	ErrBlockHashMismatch   = errors.New("block hash does not match trusted header")
	ErrInvalidReceiptProof = errors.New("invalid receipt proof")
	ErrLogNotFound         = errors.New("event log not found in receipt")
	ErrUnknownKind         = errors.New("unknown verifier kind")
)

const (
	KindBasic  = "basic"
	KindBeacon = "beacon"
)

// Event is the log a message claims was emitted.
type Event struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

// Proof locates a receipt in an execution block.
type Proof struct {
	BlockNumber  uint64          `json:"block_number"`
	BlockHash    common.Hash     `json:"block_hash"`
	TxIndex      uint64          `json:"tx_index"`
	ReceiptProof []hexutil.Bytes `json:"receipt_proof"`
}

type Message struct {
	Event Event `json:"event"`
	Proof Proof `json:"proof"`
}

// Verifier checks a message and returns the matching log.
type Verifier interface {
	Verify(msg *Message) (*ethtypes.Log, error)
}

// HeaderSource provides trusted execution headers by block number.
type HeaderSource interface {
	ExecutionHeader(number uint64) (types.ExecutionHeaderState, bool)
}

// receiptVerifier proves receipts against headers from a HeaderSource.
type receiptVerifier struct {
	source HeaderSource
}

func (v *receiptVerifier) Verify(msg *Message) (*ethtypes.Log, error) {
	header, ok := v.source.ExecutionHeader(msg.Proof.BlockNumber)
	if !ok {
		return nil, errors.Wrapf(ErrHeaderNotFound, "block %d", msg.Proof.BlockNumber)
	}
	if header.BlockHash != msg.Proof.BlockHash {
		return nil, errors.Wrapf(ErrBlockHashMismatch, "block %d: have %x, trusted %x", header.BlockNumber, msg.Proof.BlockHash, header.BlockHash)
	}
	proof := make([][]byte, len(msg.Proof.ReceiptProof))
	for i, node := range msg.Proof.ReceiptProof {
		proof[i] = node
	}
	receipt, err := VerifyReceiptProof(header.ReceiptsRoot, msg.Proof.TxIndex, proof)
	if err != nil {
		return nil, err
	}
	for _, l := range receipt.Logs {
		if matches(l, &msg.Event) {
			log.WithFields(logrus.Fields{
				"block":   header.BlockNumber,
				"tx":      msg.Proof.TxIndex,
				"address": l.Address,
			}).Debug("Verified message")
			return l, nil
		}
	}
	return nil, errors.Wrapf(ErrLogNotFound, "block %d tx %d", header.BlockNumber, msg.Proof.TxIndex)
}

func matches(l *ethtypes.Log, e *Event) bool {
	if l.Address != e.Address || len(l.Topics) != len(e.Topics) {
		return false
	}
	for i := range l.Topics {
		if l.Topics[i] != e.Topics[i] {
			return false
		}
	}
	return bytes.Equal(l.Data, e.Data)
}
