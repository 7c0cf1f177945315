package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	eth2types "github.com/prysmaticlabs/eth2-types"
	"github.com/sirupsen/logrus"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/bls"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/config"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

var log = logrus.WithField("prefix", "core")

// Option configures a LightClient.
type Option func(*LightClient)

// WithVerifier replaces the BLS verifier.
func WithVerifier(v bls.Verifier) Option {
	return func(lc *LightClient) {
		lc.verifier = v
	}
}

// WithClock replaces the wall clock used for weak subjectivity checks and
// import times.
func WithClock(now func() time.Time) Option {
	return func(lc *LightClient) {
		lc.now = now
	}
}

// LightClient verifies beacon chain updates against a trusted state. Writers
// are serialized by mu; readers load the published snapshot without locking.
type LightClient struct {
	cfg      *config.Config
	db       *store.Store
	verifier bls.Verifier
	now      func() time.Time

	mu    sync.Mutex
	state atomic.Pointer[types.TrustedState]

	finalized *store.RingBuffer[types.FinalizedHeaderState]
	execution *store.RingBuffer[types.ExecutionHeaderState]
}

// New restores a light client from db. A database that was never
// bootstrapped yields an uninitialized client.
func New(cfg *config.Config, db *store.Store, opts ...Option) (*LightClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	lc := &LightClient{
		cfg:      cfg,
		db:       db,
		verifier: bls.NewVerifier(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(lc)
	}

	state, err := db.LoadState()
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Debug("No trusted state found, waiting for checkpoint")
	case err != nil:
		return nil, errors.Wrap(err, "could not load trusted state")
	default:
		lc.state.Store(state)
	}
	if lc.finalized, err = db.LoadFinalizedHeaders(cfg.FinalizedHeaderHistory); err != nil {
		return nil, errors.Wrap(err, "could not load finalized header history")
	}
	if lc.execution, err = db.LoadExecutionHeaders(cfg.ExecutionHeaderHistory); err != nil {
		return nil, errors.Wrap(err, "could not load execution header history")
	}
	if state != nil {
		lc.updateGauges(state)
		log.WithFields(logrus.Fields{
			"slot":   state.FinalizedHeader.Slot,
			"period": state.CurrentPeriod,
		}).Info("Restored trusted state")
	}
	return lc, nil
}

func (lc *LightClient) Config() *config.Config {
	return lc.cfg
}

// State returns the current trusted state snapshot, nil before bootstrap.
// The snapshot must not be modified.
func (lc *LightClient) State() *types.TrustedState {
	return lc.state.Load()
}

func (lc *LightClient) Initialized() bool {
	return lc.state.Load() != nil
}

func (lc *LightClient) FinalizedHeader() (types.BeaconBlockHeader, error) {
	state := lc.state.Load()
	if state == nil {
		return types.BeaconBlockHeader{}, ErrNotBootstrapped
	}
	return state.FinalizedHeader, nil
}

func (lc *LightClient) CurrentPeriod() (uint64, error) {
	state := lc.state.Load()
	if state == nil {
		return 0, ErrNotBootstrapped
	}
	return state.CurrentPeriod, nil
}

// IsFinalized reports whether the block with the given root was finalized
// at slot and is still held in the history.
func (lc *LightClient) IsFinalized(slot eth2types.Slot, blockRoot common.Hash) bool {
	entry, ok := lc.finalized.Get(uint64(slot))
	return ok && entry.BlockRoot == blockRoot
}

// FinalizedHeaderAt returns the finalized header record for slot.
func (lc *LightClient) FinalizedHeaderAt(slot eth2types.Slot) (types.FinalizedHeaderState, bool) {
	return lc.finalized.Get(uint64(slot))
}

// ExecutionHeader returns an imported execution header by block number.
func (lc *LightClient) ExecutionHeader(number uint64) (types.ExecutionHeaderState, bool) {
	return lc.execution.Get(number)
}

// checkBlocked enforces the weak subjectivity period.
func (lc *LightClient) checkBlocked(state *types.TrustedState) error {
	period := lc.cfg.WeakSubjectivityPeriodSeconds
	if period == 0 {
		return nil
	}
	now := uint64(lc.now().Unix())
	if now > state.LatestImportTime && now-state.LatestImportTime > period {
		return errors.Wrapf(ErrBridgeBlocked, "last import at %d, now %d", state.LatestImportTime, now)
	}
	return nil
}

// commit persists and then publishes a transition. Memory state is only
// touched after the batch was written.
func (lc *LightClient) commit(c *store.Commit) error {
	if c.Finalized != nil {
		c.FinalizedSlot = lc.finalized.SlotOf(uint64(c.Finalized.Slot))
	}
	if c.Execution != nil {
		c.ExecutionSlot = lc.execution.SlotOf(c.Execution.BlockNumber)
	}
	if err := lc.db.Commit(c); err != nil {
		return errors.Wrap(err, "could not persist trusted state")
	}
	if c.Finalized != nil {
		if evicted, ok := lc.finalized.Insert(uint64(c.Finalized.Slot), *c.Finalized); ok {
			log.WithField("slot", evicted).Debug("Evicted finalized header from history")
		}
	}
	if c.Execution != nil {
		if evicted, ok := lc.execution.Insert(c.Execution.BlockNumber, *c.Execution); ok {
			log.WithField("block", evicted).Debug("Evicted execution header from history")
		}
	}
	if c.State != nil {
		lc.state.Store(c.State)
		lc.updateGauges(c.State)
	}
	return nil
}

func (lc *LightClient) updateGauges(state *types.TrustedState) {
	finalizedSlotGauge.Set(float64(state.FinalizedHeader.Slot))
	currentPeriodGauge.Set(float64(state.CurrentPeriod))
	executionBlockGauge.Set(float64(state.LatestExecutionBlock))
}
