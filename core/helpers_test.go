package core_test

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	eth2types "github.com/prysmaticlabs/eth2-types"
	"github.com/stretchr/testify/require"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/bls"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/config"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/core"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/merkle"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store/memory"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

var genesisValidatorsRoot = common.HexToHash("0x4b363db94e286120d76eb905340fdd4e54bfe9f06bf33ff6cf5ad27f511bfe95")

// testConfig is the minimal profile stretched to 256 slots per period.
func testConfig() *config.Config {
	cfg := config.Minimal()
	cfg.EpochsPerSyncCommitteePeriod = 32
	cfg.FinalizedHeaderHistory = 16
	cfg.ExecutionHeaderHistory = 16
	return cfg
}

type committeeKeys struct {
	secrets   []*bls.SecretKey
	committee *types.SyncCommittee
}

var (
	keysMu    sync.Mutex
	keysCache = make(map[byte]*committeeKeys)
)

// newCommitteeKeys derives a deterministic committee of 32 members.
func newCommitteeKeys(t *testing.T, seed byte) *committeeKeys {
	keysMu.Lock()
	defer keysMu.Unlock()
	if k, ok := keysCache[seed]; ok {
		return k
	}
	k := &committeeKeys{committee: &types.SyncCommittee{Pubkeys: make([]types.BLSPubkey, 32)}}
	pubs := make([]*bls.PublicKey, 32)
	for i := range pubs {
		ikm := sha256.Sum256([]byte{seed, byte(i)})
		sk, err := bls.SecretKeyFromSeed(ikm[:])
		require.NoError(t, err)
		k.secrets = append(k.secrets, sk)
		pubs[i] = sk.PublicKey()
		copy(k.committee.Pubkeys[i][:], pubs[i].Marshal())
	}
	agg, err := bls.AggregatePublicKeys(pubs)
	require.NoError(t, err)
	copy(k.committee.AggregatePubkey[:], agg.Marshal())
	keysCache[seed] = k
	return k
}

// sign returns a sync aggregate in which the first signers members signed
// attested at signatureSlot.
func (k *committeeKeys) sign(t *testing.T, cfg *config.Config, attested *types.BeaconBlockHeader, signatureSlot eth2types.Slot, signers int) types.SyncAggregate {
	domain, err := core.SyncCommitteeDomain(cfg, signatureSlot, genesisValidatorsRoot)
	require.NoError(t, err)
	root, err := core.ComputeSigningRoot(attested, domain)
	require.NoError(t, err)

	agg := types.SyncAggregate{SyncCommitteeBits: make([]byte, len(k.secrets)/8)}
	var sigs []*bls.Signature
	for i := 0; i < signers; i++ {
		agg.SyncCommitteeBits[i/8] |= 1 << uint(i%8)
		sigs = append(sigs, k.secrets[i].Sign(root))
	}
	if len(sigs) > 0 {
		sig, err := bls.AggregateSignatures(sigs)
		require.NoError(t, err)
		copy(agg.SyncCommitteeSignature[:], sig.Marshal())
	}
	return agg
}

// beaconState stands in for the beacon state tree: 32 fields of which the
// finalized checkpoint (20) and the sync committees (22, 23) are populated.
type beaconState struct {
	salt           byte
	finalizedEpoch uint64
	finalizedRoot  common.Hash
	current, next  *types.SyncCommittee
}

type stateProofs struct {
	root     common.Hash
	finality []common.Hash
	current  []common.Hash
	next     []common.Hash
}

func (s *beaconState) prove(t *testing.T) *stateProofs {
	fields := make([]common.Hash, 32)
	fields[0] = common.Hash{s.salt}

	var epoch common.Hash
	binary.LittleEndian.PutUint64(epoch[:8], s.finalizedEpoch)
	checkpoint, err := merkle.NewTree([]common.Hash{epoch, s.finalizedRoot}, 1)
	require.NoError(t, err)
	fields[20] = checkpoint.Root()
	if s.current != nil {
		fields[22], err = s.current.HashTreeRoot()
		require.NoError(t, err)
	}
	if s.next != nil {
		fields[23], err = s.next.HashTreeRoot()
		require.NoError(t, err)
	}
	tree, err := merkle.NewTree(fields, 5)
	require.NoError(t, err)

	inner, err := checkpoint.Proof(1)
	require.NoError(t, err)
	outer, err := tree.Proof(20)
	require.NoError(t, err)
	finality, gindex := merkle.Concat(inner, checkpoint.GeneralizedIndex(1), outer, tree.GeneralizedIndex(20))
	require.Equal(t, uint64(105), gindex)

	proofs := &stateProofs{root: tree.Root(), finality: finality}
	proofs.current, err = tree.Proof(22)
	require.NoError(t, err)
	proofs.next, err = tree.Proof(23)
	require.NoError(t, err)
	return proofs
}

// executionBody builds a block body tree holding payload at field 9.
func executionBody(t *testing.T, payload *types.ExecutionPayloadHeader) (common.Hash, []common.Hash) {
	leaf, err := payload.HashTreeRoot()
	require.NoError(t, err)
	fields := make([]common.Hash, 16)
	fields[0] = common.Hash{0xb0}
	fields[9] = leaf
	tree, err := merkle.NewTree(fields, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(25), tree.GeneralizedIndex(9))
	branch, err := tree.Proof(9)
	require.NoError(t, err)
	return tree.Root(), branch
}

type countingVerifier struct {
	calls atomic.Int32
	inner bls.Verifier
}

func (v *countingVerifier) VerifyAggregate(pubkeys [][]byte, msg [32]byte, sig []byte) error {
	v.calls.Add(1)
	return v.inner.VerifyAggregate(pubkeys, msg, sig)
}

// fixture wires a light client over an in-memory database with a counting
// verifier and a settable clock.
type fixture struct {
	t        *testing.T
	cfg      *config.Config
	db       *store.Store
	lc       *core.LightClient
	verifier *countingVerifier
	now      time.Time
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	f := &fixture{
		t:        t,
		cfg:      cfg,
		db:       store.New(memory.New()),
		verifier: &countingVerifier{inner: bls.NewVerifier()},
		now:      time.Unix(1000, 0),
	}
	f.lc = f.open()
	return f
}

func (f *fixture) open() *core.LightClient {
	lc, err := core.New(f.cfg, f.db, core.WithVerifier(f.verifier), core.WithClock(func() time.Time { return f.now }))
	require.NoError(f.t, err)
	return lc
}

func (f *fixture) checkpoint(keys *committeeKeys, slot eth2types.Slot) *types.CheckpointUpdate {
	proofs := (&beaconState{salt: 0xc0, current: keys.committee}).prove(f.t)
	return &types.CheckpointUpdate{
		Header: types.BeaconBlockHeader{
			Slot:          slot,
			ProposerIndex: 3,
			ParentRoot:    common.Hash{0x11},
			StateRoot:     proofs.root,
			BodyRoot:      common.Hash{0x33},
		},
		CurrentSyncCommittee:       *keys.committee,
		CurrentSyncCommitteeBranch: proofs.current,
		ValidatorsRoot:             genesisValidatorsRoot,
		ImportTime:                 uint64(f.now.Unix()),
	}
}

func (f *fixture) bootstrap(keys *committeeKeys, slot eth2types.Slot) {
	require.NoError(f.t, f.lc.Initialize(f.checkpoint(keys, slot)))
}

func finalizedHeader(slot eth2types.Slot, bodyRoot common.Hash) types.BeaconBlockHeader {
	return types.BeaconBlockHeader{
		Slot:          slot,
		ProposerIndex: 5,
		ParentRoot:    common.Hash{0x12, byte(slot)},
		StateRoot:     common.Hash{0x22, byte(slot)},
		BodyRoot:      bodyRoot,
	}
}

type updateOpts struct {
	finalized     types.BeaconBlockHeader
	attestedSlot  eth2types.Slot
	signatureSlot eth2types.Slot
	signers       int
	next          *types.SyncCommittee
}

func (f *fixture) attest(signer *committeeKeys, o *updateOpts) (types.BeaconBlockHeader, *stateProofs, types.SyncAggregate) {
	root, err := o.finalized.HashTreeRoot()
	require.NoError(f.t, err)
	proofs := (&beaconState{
		salt:           byte(o.attestedSlot),
		finalizedEpoch: uint64(f.cfg.EpochAtSlot(o.finalized.Slot)),
		finalizedRoot:  root,
		current:        signer.committee,
		next:           o.next,
	}).prove(f.t)
	attested := types.BeaconBlockHeader{
		Slot:          o.attestedSlot,
		ProposerIndex: 9,
		ParentRoot:    common.Hash{0x13},
		StateRoot:     proofs.root,
		BodyRoot:      common.Hash{0x34},
	}
	return attested, proofs, signer.sign(f.t, f.cfg, &attested, o.signatureSlot, o.signers)
}

func (f *fixture) finalizedUpdate(signer *committeeKeys, o *updateOpts) *types.FinalizedHeaderUpdate {
	attested, proofs, agg := f.attest(signer, o)
	return &types.FinalizedHeaderUpdate{
		AttestedHeader:  attested,
		FinalizedHeader: o.finalized,
		FinalityBranch:  proofs.finality,
		SyncAggregate:   agg,
		SignatureSlot:   o.signatureSlot,
	}
}

func (f *fixture) periodUpdate(signer *committeeKeys, o *updateOpts) *types.SyncCommitteePeriodUpdate {
	attested, proofs, agg := f.attest(signer, o)
	return &types.SyncCommitteePeriodUpdate{
		AttestedHeader:          attested,
		NextSyncCommittee:       *o.next,
		NextSyncCommitteeBranch: proofs.next,
		FinalizedHeader:         o.finalized,
		FinalityBranch:          proofs.finality,
		SyncAggregate:           agg,
		SyncCommitteePeriod:     f.cfg.SyncPeriodAtSlot(o.signatureSlot),
		SignatureSlot:           o.signatureSlot,
	}
}
