package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/merkle"
)

var (
	ErrAlreadyInitialized         = errors.New("light client already initialized")
	ErrNotBootstrapped            = errors.New("light client not bootstrapped")
	ErrInvalidUpdateSlot          = errors.New("invalid update slot")
	ErrInvalidMerkleProof         = errors.New("invalid merkle proof")
	ErrInsufficientParticipation  = errors.New("insufficient sync committee participation")
	ErrInvalidSignature           = errors.New("invalid sync committee signature")
	ErrSkippedSyncCommitteePeriod = errors.New("sync committee period skipped")
	ErrNotRelevant                = errors.New("update not relevant")

	ErrMalformedUpdate             = errors.New("malformed update")
	ErrInvalidSyncCommitteeUpdate  = errors.New("conflicting next sync committee")
	ErrBridgeBlocked               = errors.New("bridge blocked, weak subjectivity period exceeded")
	ErrExecutionHeaderNotFinalized = errors.New("beacon block of execution header is not finalized")
)

// errorKinds is used to label rejected updates in metrics and logs.
var errorKinds = []struct {
	err   error
	label string
}{
	{ErrAlreadyInitialized, "already_initialized"},
	{ErrNotBootstrapped, "not_bootstrapped"},
	{ErrInvalidUpdateSlot, "invalid_update_slot"},
	{ErrInvalidMerkleProof, "invalid_merkle_proof"},
	{ErrInsufficientParticipation, "insufficient_participation"},
	{ErrInvalidSignature, "invalid_signature"},
	{ErrSkippedSyncCommitteePeriod, "skipped_period"},
	{ErrNotRelevant, "not_relevant"},
	{ErrMalformedUpdate, "malformed"},
	{ErrInvalidSyncCommitteeUpdate, "conflicting_committee"},
	{ErrBridgeBlocked, "bridge_blocked"},
	{ErrExecutionHeaderNotFinalized, "not_finalized"},
}

func errorLabel(err error) string {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.err) {
			return kind.label
		}
	}
	return "internal"
}

// verifyBranch maps merkle failures onto ErrInvalidMerkleProof.
func verifyBranch(what string, leaf common.Hash, branch []common.Hash, gindex uint64, root common.Hash) error {
	if err := merkle.VerifyBranch(leaf, branch, gindex, root); err != nil {
		return errors.Wrapf(ErrInvalidMerkleProof, "%s: %v", what, err)
	}
	return nil
}
