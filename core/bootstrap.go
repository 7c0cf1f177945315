package core

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

// Initialize installs the first trusted checkpoint.
func (lc *LightClient) Initialize(checkpoint *types.CheckpointUpdate) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	err := lc.installCheckpoint(checkpoint, lc.state.Load(), false)
	recordResult(kindCheckpoint, err)
	return err
}

// ForceCheckpoint replaces the trusted state with a new checkpoint. It is
// the governance path for recovering a client blocked by the weak
// subjectivity check.
func (lc *LightClient) ForceCheckpoint(checkpoint *types.CheckpointUpdate) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	err := lc.installCheckpoint(checkpoint, lc.state.Load(), true)
	recordResult(kindCheckpoint, err)
	return err
}

func (lc *LightClient) installCheckpoint(checkpoint *types.CheckpointUpdate, prev *types.TrustedState, force bool) error {
	if prev != nil && !force {
		return ErrAlreadyInitialized
	}
	committee := &checkpoint.CurrentSyncCommittee
	if uint64(len(committee.Pubkeys)) != lc.cfg.SyncCommitteeSize {
		return errors.Wrapf(ErrMalformedUpdate, "checkpoint committee has %d members, want %d", len(committee.Pubkeys), lc.cfg.SyncCommitteeSize)
	}
	committeeRoot, err := committee.HashTreeRoot()
	if err != nil {
		return err
	}
	if err := verifyBranch("current sync committee", committeeRoot, checkpoint.CurrentSyncCommitteeBranch,
		lc.cfg.CurrentSyncCommitteeIndex, checkpoint.Header.StateRoot); err != nil {
		return err
	}
	blockRoot, err := checkpoint.Header.HashTreeRoot()
	if err != nil {
		return err
	}

	state := &types.TrustedState{
		CurrentSyncCommittee: committee.Copy(),
		FinalizedHeader:      checkpoint.Header,
		FinalizedBlockRoot:   blockRoot,
		CurrentPeriod:        lc.cfg.SyncPeriodAtSlot(checkpoint.Header.Slot),
		ValidatorsRoot:       checkpoint.ValidatorsRoot,
		LatestImportTime:     checkpoint.ImportTime,
	}
	if prev != nil {
		state.LatestExecutionBlock = prev.LatestExecutionBlock
	}
	err = lc.commit(&store.Commit{
		State: state,
		Finalized: &types.FinalizedHeaderState{
			Slot:      checkpoint.Header.Slot,
			BlockRoot: blockRoot,
			StateRoot: checkpoint.Header.StateRoot,
		},
	})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"slot":   checkpoint.Header.Slot,
		"period": state.CurrentPeriod,
		"root":   blockRoot,
		"forced": force,
	}).Info("Installed checkpoint")
	return nil
}
