// Package memory is an in-memory store.Database for tests and dry runs.
package memory

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
)

var errClosed = errors.New("database closed")

type Database struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Database {
	return &Database{data: make(map[string][]byte)}
}

func (db *Database) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.data == nil {
		return nil, errClosed
	}
	val, ok := db.data[string(key)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), val...), nil
}

func (db *Database) NewBatch() store.Batch {
	return &batch{db: db}
}

func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data = nil
	return nil
}

// Len returns the number of stored keys.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.data)
}

type op struct {
	key    string
	value  []byte
	delete bool
}

type batch struct {
	db  *Database
	ops []op
}

func (b *batch) Put(key, value []byte) error {
	b.ops = append(b.ops, op{key: string(key), value: append([]byte(nil), value...)})
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: string(key), delete: true})
	return nil
}

func (b *batch) Write() error {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	if b.db.data == nil {
		return errClosed
	}
	for _, o := range b.ops {
		if o.delete {
			delete(b.db.data, o.key)
		} else {
			b.db.data[o.key] = o.value
		}
	}
	b.ops = nil
	return nil
}
