package types

import (
	"github.com/ethereum/go-ethereum/common"
	eth2types "github.com/prysmaticlabs/eth2-types"
)

// TrustedState is the light client's view of the beacon chain. Values are
// never mutated once published; transitions build a new TrustedState.
type TrustedState struct {
	CurrentSyncCommittee *SyncCommittee
	NextSyncCommittee    *SyncCommittee
	FinalizedHeader      BeaconBlockHeader
	FinalizedBlockRoot   common.Hash
	CurrentPeriod        uint64
	ValidatorsRoot       common.Hash
	LatestImportTime     uint64
	LatestExecutionBlock uint64
}

// Copy returns a shallow copy; committees are shared since they are never
// mutated in place.
func (s *TrustedState) Copy() *TrustedState {
	cp := *s
	return &cp
}

// FinalizedHeaderState records a finalized beacon block.
type FinalizedHeaderState struct {
	Slot      eth2types.Slot
	BlockRoot common.Hash
	StateRoot common.Hash
}

// ExecutionHeaderState records an imported execution block.
type ExecutionHeaderState struct {
	BlockNumber     uint64         `json:"block_number"`
	BlockHash       common.Hash    `json:"block_hash"`
	ParentHash      common.Hash    `json:"parent_hash"`
	ReceiptsRoot    common.Hash    `json:"receipts_root"`
	StateRoot       common.Hash    `json:"state_root"`
	BeaconSlot      eth2types.Slot `json:"beacon_slot"`
	BeaconBlockRoot common.Hash    `json:"beacon_block_root"`
}
