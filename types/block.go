package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	eth2types "github.com/prysmaticlabs/eth2-types"
)

// BeaconBlockHeader is the header a sync committee signs over.
type BeaconBlockHeader struct {
	Slot          eth2types.Slot `json:"slot"`
	ProposerIndex uint64         `json:"proposer_index"`
	ParentRoot    common.Hash    `json:"parent_root"`
	StateRoot     common.Hash    `json:"state_root"`
	BodyRoot      common.Hash    `json:"body_root"`
}

// ExecutionPayloadHeader is the Capella execution payload header embedded
// in a beacon block body.
type ExecutionPayloadHeader struct {
	ParentHash       common.Hash    `json:"parent_hash"`
	FeeRecipient     common.Address `json:"fee_recipient"`
	StateRoot        common.Hash    `json:"state_root"`
	ReceiptsRoot     common.Hash    `json:"receipts_root"`
	LogsBloom        LogsBloom      `json:"logs_bloom"`
	PrevRandao       common.Hash    `json:"prev_randao"`
	BlockNumber      uint64         `json:"block_number"`
	GasLimit         uint64         `json:"gas_limit"`
	GasUsed          uint64         `json:"gas_used"`
	Timestamp        uint64         `json:"timestamp"`
	ExtraData        hexutil.Bytes  `json:"extra_data"`
	BaseFeePerGas    *uint256.Int   `json:"base_fee_per_gas"`
	BlockHash        common.Hash    `json:"block_hash"`
	TransactionsRoot common.Hash    `json:"transactions_root"`
	WithdrawalsRoot  common.Hash    `json:"withdrawals_root"`
}

const MaxExtraDataBytes = 32

type LogsBloom [256]byte

func (b LogsBloom) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b[:]).MarshalText()
}

func (b *LogsBloom) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("LogsBloom", input, b[:])
}
