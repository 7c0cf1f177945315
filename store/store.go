package store

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

var log = logrus.WithField("prefix", "store")

var (
	currentSyncCommitteeKey = []byte("current_sync_committee")
	nextSyncCommitteeKey    = []byte("next_sync_committee")
	finalizedHeaderKey      = []byte("finalized_header")
	finalizedBlockRootKey   = []byte("finalized_block_root")
	currentPeriodKey        = []byte("current_period")
	validatorsRootKey       = []byte("validators_root")
	latestImportTimeKey     = []byte("latest_import_time")
	latestExecutionBlockKey = []byte("latest_execution_block")

	finalizedPrefix = "finalized/"
	executionPrefix = "execution/"
)

func ringKey(prefix string, slot uint64) []byte {
	return []byte(fmt.Sprintf("%s%d", prefix, slot))
}

// ringEntry is the persisted form of an occupied ring slot.
type ringEntry[V any] struct {
	Key   uint64
	Value V
}

// Store reads and writes the light client's typed records.
type Store struct {
	db Database
}

func New(db Database) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key []byte, val interface{}) error {
	data, err := s.db.Get(key)
	if err != nil {
		return err
	}
	if err := decode(data, val); err != nil {
		return errors.Wrapf(err, "could not decode %s", key)
	}
	return nil
}

// LoadState returns the persisted trusted state, or ErrNotFound if the
// light client was never bootstrapped.
func (s *Store) LoadState() (*types.TrustedState, error) {
	state := new(types.TrustedState)
	current := new(types.SyncCommittee)
	if err := s.get(currentSyncCommitteeKey, current); err != nil {
		return nil, err
	}
	state.CurrentSyncCommittee = current

	next := new(types.SyncCommittee)
	switch err := s.get(nextSyncCommitteeKey, next); {
	case err == nil:
		state.NextSyncCommittee = next
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	for key, val := range map[string]interface{}{
		string(finalizedHeaderKey):      &state.FinalizedHeader,
		string(finalizedBlockRootKey):   &state.FinalizedBlockRoot,
		string(currentPeriodKey):        &state.CurrentPeriod,
		string(validatorsRootKey):       &state.ValidatorsRoot,
		string(latestImportTimeKey):     &state.LatestImportTime,
		string(latestExecutionBlockKey): &state.LatestExecutionBlock,
	} {
		if err := s.get([]byte(key), val); err != nil {
			return nil, errors.Wrapf(err, "load %s", key)
		}
	}
	return state, nil
}

// Commit is a set of records written in one batch.
type Commit struct {
	State     *types.TrustedState
	Finalized *types.FinalizedHeaderState
	Execution *types.ExecutionHeaderState

	FinalizedSlot uint64 // ring slot for Finalized
	ExecutionSlot uint64 // ring slot for Execution
}

// Commit writes every record of c atomically.
func (s *Store) Commit(c *Commit) error {
	batch := s.db.NewBatch()
	put := func(key []byte, val interface{}) error {
		enc, err := encode(val)
		if err != nil {
			return errors.Wrapf(err, "could not encode %s", key)
		}
		return batch.Put(key, enc)
	}
	if st := c.State; st != nil {
		if st.CurrentSyncCommittee == nil {
			return errors.New("trusted state without current sync committee")
		}
		if err := put(currentSyncCommitteeKey, st.CurrentSyncCommittee); err != nil {
			return err
		}
		if st.NextSyncCommittee != nil {
			if err := put(nextSyncCommitteeKey, st.NextSyncCommittee); err != nil {
				return err
			}
		} else if err := batch.Delete(nextSyncCommitteeKey); err != nil {
			return err
		}
		for _, kv := range []struct {
			key []byte
			val interface{}
		}{
			{finalizedHeaderKey, &st.FinalizedHeader},
			{finalizedBlockRootKey, st.FinalizedBlockRoot},
			{currentPeriodKey, st.CurrentPeriod},
			{validatorsRootKey, st.ValidatorsRoot},
			{latestImportTimeKey, st.LatestImportTime},
			{latestExecutionBlockKey, st.LatestExecutionBlock},
		} {
			if err := put(kv.key, kv.val); err != nil {
				return err
			}
		}
	}
	if c.Finalized != nil {
		entry := &ringEntry[types.FinalizedHeaderState]{Key: uint64(c.Finalized.Slot), Value: *c.Finalized}
		if err := put(ringKey(finalizedPrefix, c.FinalizedSlot), entry); err != nil {
			return err
		}
	}
	if c.Execution != nil {
		entry := &ringEntry[types.ExecutionHeaderState]{Key: c.Execution.BlockNumber, Value: *c.Execution}
		if err := put(ringKey(executionPrefix, c.ExecutionSlot), entry); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "could not write batch")
	}
	return nil
}

func loadRing[V any](s *Store, prefix string, capacity uint64) (*RingBuffer[V], error) {
	ring := NewRingBuffer[V](capacity)
	for slot := uint64(0); slot < ring.Capacity(); slot++ {
		entry := new(ringEntry[V])
		err := s.get(ringKey(prefix, slot), entry)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ring.SlotOf(entry.Key) != slot {
			// Capacity changed since the entry was written.
			log.WithField("key", entry.Key).WithField("slot", slot).Warn("Dropping misplaced history entry")
			continue
		}
		ring.Insert(entry.Key, entry.Value)
	}
	return ring, nil
}

// LoadFinalizedHeaders restores the finalized header history.
func (s *Store) LoadFinalizedHeaders(capacity uint64) (*RingBuffer[types.FinalizedHeaderState], error) {
	return loadRing[types.FinalizedHeaderState](s, finalizedPrefix, capacity)
}

// LoadExecutionHeaders restores the execution header history.
func (s *Store) LoadExecutionHeaders(capacity uint64) (*RingBuffer[types.ExecutionHeaderState], error) {
	return loadRing[types.ExecutionHeaderState](s, executionPrefix, capacity)
}
