// Package pebble implements store.Database on a pebble LSM.
package pebble

import (
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
)

type Database struct {
	db *pebble.DB
}

// New opens (creating if needed) a pebble database in dir.
func New(dir string) (*Database, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open pebble at %s", dir)
	}
	return &Database{db: db}, nil
}

func (db *Database) Get(key []byte) ([]byte, error) {
	val, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

func (db *Database) NewBatch() store.Batch {
	return &batch{b: db.db.NewBatch()}
}

func (db *Database) Close() error {
	return db.db.Close()
}

type batch struct {
	b *pebble.Batch
}

func (b *batch) Put(key, value []byte) error {
	return b.b.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	return b.b.Delete(key, nil)
}

func (b *batch) Write() error {
	defer b.b.Close()
	return b.b.Commit(pebble.Sync)
}
