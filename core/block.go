package core

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

// ImportExecutionHeader records the execution payload header of a finalized
// beacon block.
func (lc *LightClient) ImportExecutionHeader(update *types.ExecutionHeaderUpdate) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	state := lc.state.Load()
	if state == nil {
		recordResult(kindExecution, ErrNotBootstrapped)
		return ErrNotBootstrapped
	}
	c, err := lc.processExecutionHeader(state, update)
	if err == nil {
		err = lc.commit(c)
	}
	recordResult(kindExecution, err)
	if err != nil {
		log.WithError(err).Debug("Rejected execution header")
		return err
	}
	log.WithFields(logrus.Fields{
		"block": update.ExecutionHeader.BlockNumber,
		"hash":  update.ExecutionHeader.BlockHash,
		"slot":  update.Header.Slot,
	}).Info("Imported execution header")
	return nil
}

func (lc *LightClient) processExecutionHeader(state *types.TrustedState, update *types.ExecutionHeaderUpdate) (*store.Commit, error) {
	if err := lc.checkBlocked(state); err != nil {
		return nil, err
	}
	blockRoot, err := update.Header.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	if !lc.IsFinalized(update.Header.Slot, blockRoot) {
		return nil, errors.Wrapf(ErrExecutionHeaderNotFinalized, "slot %d root %x", update.Header.Slot, blockRoot)
	}
	payload := &update.ExecutionHeader
	payloadRoot, err := payload.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedUpdate, "execution header: %v", err)
	}
	if err := verifyBranch("execution payload", payloadRoot, update.ExecutionBranch, lc.cfg.ExecutionPayloadIndex, update.Header.BodyRoot); err != nil {
		return nil, err
	}
	if payload.BlockNumber <= state.LatestExecutionBlock {
		return nil, errors.Wrapf(ErrNotRelevant, "execution block %d, have %d", payload.BlockNumber, state.LatestExecutionBlock)
	}

	ns := state.Copy()
	ns.LatestExecutionBlock = payload.BlockNumber
	return &store.Commit{
		State: ns,
		Execution: &types.ExecutionHeaderState{
			BlockNumber:     payload.BlockNumber,
			BlockHash:       payload.BlockHash,
			ParentHash:      payload.ParentHash,
			ReceiptsRoot:    payload.ReceiptsRoot,
			StateRoot:       payload.StateRoot,
			BeaconSlot:      update.Header.Slot,
			BeaconBlockRoot: blockRoot,
		},
	}, nil
}
