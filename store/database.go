// Package store persists the light client's trusted state and header
// history on top of a small key-value abstraction.
package store

import (
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Database.Get for missing keys.
var ErrNotFound = errors.New("not found")

// Database is the key-value engine behind Store. Implementations live in
// the memory, bolt and pebble subpackages.
type Database interface {
	Get(key []byte) ([]byte, error)
	NewBatch() Batch
	Close() error
}

// Batch collects writes that become visible together on Write.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Write() error
}
