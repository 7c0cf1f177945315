package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	eth2types "github.com/prysmaticlabs/eth2-types"
)

// SyncCommittee is the ordered set of validators signing for one period.
type SyncCommittee struct {
	Pubkeys         []BLSPubkey `json:"pubkeys"`
	AggregatePubkey BLSPubkey   `json:"aggregate_pubkey"`
}

// Equal reports whether both committees hold the same keys in order.
func (s *SyncCommittee) Equal(o *SyncCommittee) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.AggregatePubkey != o.AggregatePubkey || len(s.Pubkeys) != len(o.Pubkeys) {
		return false
	}
	for i := range s.Pubkeys {
		if s.Pubkeys[i] != o.Pubkeys[i] {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the committee.
func (s *SyncCommittee) Copy() *SyncCommittee {
	if s == nil {
		return nil
	}
	cp := &SyncCommittee{
		Pubkeys:         make([]BLSPubkey, len(s.Pubkeys)),
		AggregatePubkey: s.AggregatePubkey,
	}
	copy(cp.Pubkeys, s.Pubkeys)
	return cp
}

type SyncAggregate struct {
	SyncCommitteeBits      hexutil.Bytes `json:"sync_committee_bits"`
	SyncCommitteeSignature BLSSignature  `json:"sync_committee_signature"`
}

// CheckpointUpdate seeds the light client with a trusted header and the
// committee serving its period.
type CheckpointUpdate struct {
	Header                     BeaconBlockHeader `json:"header"`
	CurrentSyncCommittee       SyncCommittee     `json:"current_sync_committee"`
	CurrentSyncCommitteeBranch []common.Hash     `json:"current_sync_committee_branch"`
	ValidatorsRoot             common.Hash       `json:"validators_root"`
	ImportTime                 uint64            `json:"import_time"`
}

// SyncCommitteePeriodUpdate carries the next sync committee together with a
// finality proof, both rooted in the attested header.
type SyncCommitteePeriodUpdate struct {
	AttestedHeader          BeaconBlockHeader `json:"attested_header"`
	NextSyncCommittee       SyncCommittee     `json:"next_sync_committee"`
	NextSyncCommitteeBranch []common.Hash     `json:"next_sync_committee_branch"`
	FinalizedHeader         BeaconBlockHeader `json:"finalized_header"`
	FinalityBranch          []common.Hash     `json:"finality_branch"`
	SyncAggregate           SyncAggregate     `json:"sync_aggregate"`
	SyncCommitteePeriod     uint64            `json:"sync_committee_period"`
	SignatureSlot           eth2types.Slot    `json:"signature_slot"`
}

// FinalizedHeaderUpdate advances finality without touching the committees.
type FinalizedHeaderUpdate struct {
	AttestedHeader  BeaconBlockHeader `json:"attested_header"`
	FinalizedHeader BeaconBlockHeader `json:"finalized_header"`
	FinalityBranch  []common.Hash     `json:"finality_branch"`
	SyncAggregate   SyncAggregate     `json:"sync_aggregate"`
	SignatureSlot   eth2types.Slot    `json:"signature_slot"`
}

// ExecutionHeaderUpdate proves an execution payload header into the body of
// an already finalized beacon block.
type ExecutionHeaderUpdate struct {
	Header          BeaconBlockHeader      `json:"header"`
	ExecutionHeader ExecutionPayloadHeader `json:"execution_header"`
	ExecutionBranch []common.Hash          `json:"execution_branch"`
}
