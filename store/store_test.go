package store_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	eth2types "github.com/prysmaticlabs/eth2-types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store/bolt"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store/memory"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store/pebble"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

func backends(t *testing.T) map[string]func() store.Database {
	return map[string]func() store.Database{
		"memory": func() store.Database { return memory.New() },
		"bolt": func() store.Database {
			db, err := bolt.New(t.TempDir())
			require.NoError(t, err)
			return db
		},
		"pebble": func() store.Database {
			db, err := pebble.New(t.TempDir())
			require.NoError(t, err)
			return db
		},
	}
}

func committee(seed byte, size int) *types.SyncCommittee {
	c := &types.SyncCommittee{Pubkeys: make([]types.BLSPubkey, size)}
	for i := range c.Pubkeys {
		c.Pubkeys[i][0] = seed
		c.Pubkeys[i][1] = byte(i)
	}
	c.AggregatePubkey[0] = seed
	return c
}

func testState() *types.TrustedState {
	return &types.TrustedState{
		CurrentSyncCommittee: committee(1, 32),
		FinalizedHeader: types.BeaconBlockHeader{
			Slot:          100,
			ProposerIndex: 7,
			StateRoot:     common.HexToHash("0x22"),
		},
		FinalizedBlockRoot:   common.HexToHash("0xaa"),
		CurrentPeriod:        1,
		ValidatorsRoot:       common.HexToHash("0x4b36"),
		LatestImportTime:     1700000000,
		LatestExecutionBlock: 0,
	}
}

func TestDatabaseBackends(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			db := open()
			defer db.Close()

			_, err := db.Get([]byte("missing"))
			require.True(t, errors.Is(err, store.ErrNotFound))

			b := db.NewBatch()
			require.NoError(t, b.Put([]byte("a"), []byte{1}))
			require.NoError(t, b.Put([]byte("b"), []byte{2}))
			_, err = db.Get([]byte("a"))
			require.True(t, errors.Is(err, store.ErrNotFound), "batch visible before write")
			require.NoError(t, b.Write())

			val, err := db.Get([]byte("a"))
			require.NoError(t, err)
			assert.Equal(t, []byte{1}, val)

			b = db.NewBatch()
			require.NoError(t, b.Delete([]byte("a")))
			require.NoError(t, b.Write())
			_, err = db.Get([]byte("a"))
			require.True(t, errors.Is(err, store.ErrNotFound))
			val, err = db.Get([]byte("b"))
			require.NoError(t, err)
			assert.Equal(t, []byte{2}, val)
		})
	}
}

func TestStateRoundTrip(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := store.New(open())
			defer s.Close()

			_, err := s.LoadState()
			require.True(t, errors.Is(err, store.ErrNotFound))

			state := testState()
			require.NoError(t, s.Commit(&store.Commit{State: state}))
			loaded, err := s.LoadState()
			require.NoError(t, err)
			assert.Nil(t, loaded.NextSyncCommittee)
			assert.Equal(t, state, loaded)

			next := state.Copy()
			next.NextSyncCommittee = committee(2, 32)
			next.CurrentPeriod = 2
			require.NoError(t, s.Commit(&store.Commit{State: next}))
			loaded, err = s.LoadState()
			require.NoError(t, err)
			assert.True(t, next.NextSyncCommittee.Equal(loaded.NextSyncCommittee))
			assert.Equal(t, uint64(2), loaded.CurrentPeriod)

			rotated := next.Copy()
			rotated.CurrentSyncCommittee, rotated.NextSyncCommittee = next.NextSyncCommittee, nil
			require.NoError(t, s.Commit(&store.Commit{State: rotated}))
			loaded, err = s.LoadState()
			require.NoError(t, err)
			assert.Nil(t, loaded.NextSyncCommittee)
			assert.True(t, committee(2, 32).Equal(loaded.CurrentSyncCommittee))
		})
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	s := store.New(memory.New())
	ring := store.NewRingBuffer[types.FinalizedHeaderState](4)

	for _, slot := range []uint64{100, 101, 104} {
		entry := &types.FinalizedHeaderState{Slot: eth2types.Slot(slot), BlockRoot: common.Hash{byte(slot)}}
		require.NoError(t, s.Commit(&store.Commit{Finalized: entry, FinalizedSlot: ring.SlotOf(slot)}))
		ring.Insert(slot, *entry)
	}
	exec := &types.ExecutionHeaderState{BlockNumber: 9, BlockHash: common.Hash{9}}
	require.NoError(t, s.Commit(&store.Commit{Execution: exec, ExecutionSlot: 9 % 4}))

	loaded, err := s.LoadFinalizedHeaders(4)
	require.NoError(t, err)
	// 104 evicted 100
	_, ok := loaded.Get(100)
	assert.False(t, ok)
	for _, slot := range []uint64{101, 104} {
		got, ok := loaded.Get(slot)
		require.True(t, ok)
		assert.Equal(t, common.Hash{byte(slot)}, got.BlockRoot)
	}

	execs, err := s.LoadExecutionHeaders(4)
	require.NoError(t, err)
	got, ok := execs.Get(9)
	require.True(t, ok)
	assert.Equal(t, common.Hash{9}, got.BlockHash)

	// A different capacity drops entries that no longer map to their slot.
	resized, err := s.LoadFinalizedHeaders(3)
	require.NoError(t, err)
	assert.Equal(t, 0, resized.Len())
}

func TestCommitRejectsStateWithoutCommittee(t *testing.T) {
	s := store.New(memory.New())
	state := testState()
	state.CurrentSyncCommittee = nil
	require.Error(t, s.Commit(&store.Commit{State: state}))
}
