package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	eth2types "github.com/prysmaticlabs/eth2-types"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/bls"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/config"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

// ComputeDomain returns domainType ‖ HTR(ForkData)[:28].
func ComputeDomain(domainType, forkVersion [4]byte, genesisValidatorsRoot common.Hash) (types.Domain, error) {
	forkData := &types.ForkData{
		CurrentVersion:        forkVersion,
		GenesisValidatorsRoot: genesisValidatorsRoot,
	}
	root, err := forkData.HashTreeRoot()
	if err != nil {
		return types.Domain{}, err
	}
	var domain types.Domain
	copy(domain[:4], domainType[:])
	copy(domain[4:], root[:28])
	return domain, nil
}

// ComputeSigningRoot binds a header to a signature domain.
func ComputeSigningRoot(header *types.BeaconBlockHeader, domain types.Domain) (common.Hash, error) {
	headerRoot, err := header.HashTreeRoot()
	if err != nil {
		return common.Hash{}, err
	}
	signingData := &types.SigningData{ObjectRoot: headerRoot, Domain: domain}
	return signingData.HashTreeRoot()
}

// SyncCommitteeDomain returns the domain a sync aggregate included at
// signatureSlot was signed with. The committee signs the previous slot's
// block, so the fork is taken at max(signatureSlot, 1) - 1.
func SyncCommitteeDomain(cfg *config.Config, signatureSlot eth2types.Slot, genesisValidatorsRoot common.Hash) (types.Domain, error) {
	if signatureSlot < 1 {
		signatureSlot = 1
	}
	version := cfg.ForkVersionAtEpoch(cfg.EpochAtSlot(signatureSlot - 1))
	return ComputeDomain(cfg.DomainSyncCommittee, version, genesisValidatorsRoot)
}

// VerifyAggregate checks that the participating members of committee signed
// signingRoot.
func VerifyAggregate(v bls.Verifier, committee *types.SyncCommittee, bits []bool, signature types.BLSSignature, signingRoot common.Hash) error {
	if len(bits) != len(committee.Pubkeys) {
		return errors.Wrapf(ErrMalformedUpdate, "%d participation bits for %d committee members", len(bits), len(committee.Pubkeys))
	}
	pubkeys := make([][]byte, 0, len(bits))
	for i, set := range bits {
		if set {
			pubkeys = append(pubkeys, committee.Pubkeys[i][:])
		}
	}
	if err := v.VerifyAggregate(pubkeys, signingRoot, signature[:]); err != nil {
		return errors.Wrapf(ErrInvalidSignature, "%v", err)
	}
	return nil
}
