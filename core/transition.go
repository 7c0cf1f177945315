package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	eth2types "github.com/prysmaticlabs/eth2-types"
	"github.com/sirupsen/logrus"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/config"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

// ApplySyncCommitteePeriodUpdate learns the sync committee following
// update.SyncCommitteePeriod and advances finality.
func (lc *LightClient) ApplySyncCommitteePeriodUpdate(update *types.SyncCommitteePeriodUpdate) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	return lc.applyUpdate(kindPeriod, func(state *types.TrustedState) (*store.Commit, uint64, error) {
		return lc.processSyncCommitteePeriodUpdate(state, update)
	})
}

// ApplyFinalizedHeaderUpdate advances the finalized header.
func (lc *LightClient) ApplyFinalizedHeaderUpdate(update *types.FinalizedHeaderUpdate) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	return lc.applyUpdate(kindFinalized, func(state *types.TrustedState) (*store.Commit, uint64, error) {
		return lc.processFinalizedHeaderUpdate(state, update)
	})
}

func (lc *LightClient) applyUpdate(kind string, process func(*types.TrustedState) (*store.Commit, uint64, error)) error {
	state := lc.state.Load()
	if state == nil {
		recordResult(kind, ErrNotBootstrapped)
		return ErrNotBootstrapped
	}
	var participants uint64
	err := lc.checkBlocked(state)
	if err == nil {
		var c *store.Commit
		if c, participants, err = process(state); err == nil {
			err = lc.commit(c)
		}
	}
	recordResult(kind, err)
	if err != nil {
		log.WithError(err).WithField("kind", kind).Debug("Rejected update")
		return err
	}
	participationGauge.Set(float64(participants))
	next := lc.state.Load()
	log.WithFields(logrus.Fields{
		"kind":          kind,
		"slot":          next.FinalizedHeader.Slot,
		"period":        next.CurrentPeriod,
		"participation": participants,
	}).Info("Applied update")
	return nil
}

// signedHeader is the part common to both update kinds.
type signedHeader struct {
	attested       *types.BeaconBlockHeader
	finalized      *types.BeaconBlockHeader
	finalityBranch []common.Hash
	aggregate      *types.SyncAggregate
	signatureSlot  eth2types.Slot
}

// signaturePeriod checks that period p may be verified from state and
// returns the committee trusted to sign in it.
func (lc *LightClient) signaturePeriod(state *types.TrustedState, p uint64) (*types.SyncCommittee, error) {
	s := state.CurrentPeriod
	switch {
	case p < s:
		return nil, errors.Wrapf(ErrNotRelevant, "period %d is before current period %d", p, s)
	case p == s:
		return state.CurrentSyncCommittee, nil
	case p == s+1 && state.NextSyncCommittee != nil:
		return state.NextSyncCommittee, nil
	default:
		return nil, errors.Wrapf(ErrSkippedSyncCommitteePeriod, "period %d, current period %d", p, s)
	}
}

// checkFinality verifies slot ordering and the finality branch, returning
// the finalized block root.
func (lc *LightClient) checkFinality(h *signedHeader) (common.Hash, error) {
	if !(h.signatureSlot > h.attested.Slot && h.attested.Slot >= h.finalized.Slot) {
		return common.Hash{}, errors.Wrapf(ErrInvalidUpdateSlot, "signature slot %d, attested slot %d, finalized slot %d",
			h.signatureSlot, h.attested.Slot, h.finalized.Slot)
	}
	finalizedRoot, err := h.finalized.HashTreeRoot()
	if err != nil {
		return common.Hash{}, err
	}
	if err := verifyBranch("finality", finalizedRoot, h.finalityBranch, lc.cfg.FinalizedRootIndex, h.attested.StateRoot); err != nil {
		return common.Hash{}, err
	}
	return finalizedRoot, nil
}

func (lc *LightClient) verifySyncAggregate(state *types.TrustedState, committee *types.SyncCommittee, h *signedHeader) (uint64, error) {
	bits, err := DecompressBits(h.aggregate.SyncCommitteeBits, lc.cfg.SyncCommitteeSize)
	if err != nil {
		return 0, err
	}
	participants := CountSetBits(bits)
	if !HasQuorum(participants, lc.cfg.SyncCommitteeSize) {
		return 0, errors.Wrapf(ErrInsufficientParticipation, "%d of %d", participants, lc.cfg.SyncCommitteeSize)
	}
	domain, err := SyncCommitteeDomain(lc.cfg, h.signatureSlot, state.ValidatorsRoot)
	if err != nil {
		return 0, err
	}
	signingRoot, err := ComputeSigningRoot(h.attested, domain)
	if err != nil {
		return 0, err
	}
	if err := VerifyAggregate(lc.verifier, committee, bits, h.aggregate.SyncCommitteeSignature, signingRoot); err != nil {
		return 0, err
	}
	return participants, nil
}

func (lc *LightClient) processSyncCommitteePeriodUpdate(state *types.TrustedState, update *types.SyncCommitteePeriodUpdate) (*store.Commit, uint64, error) {
	p := update.SyncCommitteePeriod
	signer, err := lc.signaturePeriod(state, p)
	if err != nil {
		return nil, 0, err
	}
	if sp := lc.cfg.SyncPeriodAtSlot(update.SignatureSlot); sp != p {
		return nil, 0, errors.Wrapf(ErrInvalidUpdateSlot, "signature slot %d is in period %d, update claims %d", update.SignatureSlot, sp, p)
	}
	// The next committee in the attested state serves the period after it.
	if ap := lc.cfg.SyncPeriodAtSlot(update.AttestedHeader.Slot); ap != p {
		return nil, 0, errors.Wrapf(ErrInvalidUpdateSlot, "attested slot %d is in period %d, update claims %d", update.AttestedHeader.Slot, ap, p)
	}

	h := &signedHeader{
		attested:       &update.AttestedHeader,
		finalized:      &update.FinalizedHeader,
		finalityBranch: update.FinalityBranch,
		aggregate:      &update.SyncAggregate,
		signatureSlot:  update.SignatureSlot,
	}
	finalizedRoot, err := lc.checkFinality(h)
	if err != nil {
		return nil, 0, err
	}
	next := &update.NextSyncCommittee
	if uint64(len(next.Pubkeys)) != lc.cfg.SyncCommitteeSize {
		return nil, 0, errors.Wrapf(ErrMalformedUpdate, "next committee has %d members, want %d", len(next.Pubkeys), lc.cfg.SyncCommitteeSize)
	}
	nextRoot, err := next.HashTreeRoot()
	if err != nil {
		return nil, 0, err
	}
	if err := verifyBranch("next sync committee", nextRoot, update.NextSyncCommitteeBranch, lc.cfg.NextSyncCommitteeIndex, h.attested.StateRoot); err != nil {
		return nil, 0, err
	}
	participants, err := lc.verifySyncAggregate(state, signer, h)
	if err != nil {
		return nil, 0, err
	}

	ns := state.Copy()
	changed := false
	if p == state.CurrentPeriod {
		switch {
		case state.NextSyncCommittee == nil:
			ns.NextSyncCommittee = next.Copy()
			changed = true
		case !state.NextSyncCommittee.Equal(next):
			return nil, 0, errors.Wrapf(ErrInvalidSyncCommitteeUpdate, "period %d", p+1)
		}
	}
	var finalized *types.FinalizedHeaderState
	if h.finalized.Slot > state.FinalizedHeader.Slot {
		if finalized, err = lc.advanceFinalized(ns, h.finalized, finalizedRoot); err != nil {
			return nil, 0, err
		}
		changed = true
	}
	if p == state.CurrentPeriod+1 {
		// Signed by the stored next committee; it carries the committee
		// after that, which can only be kept once rotated.
		if lc.cfg.RotationPolicy == config.RotateOnSignaturePeriod && ns.CurrentPeriod == state.CurrentPeriod {
			rotate(ns)
		}
		if ns.CurrentPeriod == p {
			ns.NextSyncCommittee = next.Copy()
			changed = true
		}
	}
	if !changed {
		return nil, 0, errors.Wrapf(ErrNotRelevant, "period %d update changes nothing", p)
	}
	return &store.Commit{State: ns, Finalized: finalized}, participants, nil
}

func (lc *LightClient) processFinalizedHeaderUpdate(state *types.TrustedState, update *types.FinalizedHeaderUpdate) (*store.Commit, uint64, error) {
	p := lc.cfg.SyncPeriodAtSlot(update.SignatureSlot)
	signer, err := lc.signaturePeriod(state, p)
	if err != nil {
		return nil, 0, err
	}
	h := &signedHeader{
		attested:       &update.AttestedHeader,
		finalized:      &update.FinalizedHeader,
		finalityBranch: update.FinalityBranch,
		aggregate:      &update.SyncAggregate,
		signatureSlot:  update.SignatureSlot,
	}
	finalizedRoot, err := lc.checkFinality(h)
	if err != nil {
		return nil, 0, err
	}
	participants, err := lc.verifySyncAggregate(state, signer, h)
	if err != nil {
		return nil, 0, err
	}
	if h.finalized.Slot <= state.FinalizedHeader.Slot {
		return nil, 0, errors.Wrapf(ErrNotRelevant, "finalized slot %d, have %d", h.finalized.Slot, state.FinalizedHeader.Slot)
	}
	ns := state.Copy()
	finalized, err := lc.advanceFinalized(ns, h.finalized, finalizedRoot)
	if err != nil {
		return nil, 0, err
	}
	if lc.cfg.RotationPolicy == config.RotateOnSignaturePeriod && p == ns.CurrentPeriod+1 {
		rotate(ns)
	}
	return &store.Commit{State: ns, Finalized: finalized}, participants, nil
}

// advanceFinalized moves ns to a newer finalized header and, under the
// finalized period policy, rotates the committees when the header enters
// the next period.
func (lc *LightClient) advanceFinalized(ns *types.TrustedState, header *types.BeaconBlockHeader, root common.Hash) (*types.FinalizedHeaderState, error) {
	if fp := lc.cfg.SyncPeriodAtSlot(header.Slot); fp > ns.CurrentPeriod {
		if fp > ns.CurrentPeriod+1 || ns.NextSyncCommittee == nil {
			return nil, errors.Wrapf(ErrSkippedSyncCommitteePeriod, "finalized slot %d is in period %d, current period %d", header.Slot, fp, ns.CurrentPeriod)
		}
		if lc.cfg.RotationPolicy == config.RotateOnFinalizedPeriod {
			rotate(ns)
		}
	}
	ns.FinalizedHeader = *header
	ns.FinalizedBlockRoot = root
	ns.LatestImportTime = uint64(lc.now().Unix())
	return &types.FinalizedHeaderState{
		Slot:      header.Slot,
		BlockRoot: root,
		StateRoot: header.StateRoot,
	}, nil
}

func rotate(ns *types.TrustedState) {
	ns.CurrentSyncCommittee = ns.NextSyncCommittee
	ns.NextSyncCommittee = nil
	ns.CurrentPeriod++
}
