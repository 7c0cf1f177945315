// Package bolt implements store.Database on a single bbolt bucket.
package bolt

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
)

var (
	databaseFileName  = "lightclient.db"
	lightClientBucket = []byte("lightclient")
)

type Database struct {
	db           *bolt.DB
	databasePath string
}

// New opens (creating if needed) the bolt database inside dirPath.
func New(dirPath string) (*Database, error) {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return nil, err
	}
	datafile := filepath.Join(dirPath, databaseFileName)
	boltDB, err := bolt.Open(datafile, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, err
	}
	if err := boltDB.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(lightClientBucket)
		return err
	}); err != nil {
		boltDB.Close()
		return nil, err
	}
	return &Database{db: boltDB, databasePath: datafile}, nil
}

// DatabasePath at which this database writes files.
func (db *Database) DatabasePath() string {
	return db.databasePath
}

func (db *Database) Get(key []byte) ([]byte, error) {
	var val []byte
	err := db.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(lightClientBucket).Get(key)
		if v == nil {
			return store.ErrNotFound
		}
		// Bolt values are only valid for the life of the transaction.
		val = append([]byte(nil), v...)
		return nil
	})
	return val, err
}

func (db *Database) NewBatch() store.Batch {
	return &batch{db: db.db}
}

func (db *Database) Close() error {
	return db.db.Close()
}

type op struct {
	key, value []byte
	delete     bool
}

type batch struct {
	db  *bolt.DB
	ops []op
}

func (b *batch) Put(key, value []byte) error {
	b.ops = append(b.ops, op{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: append([]byte(nil), key...), delete: true})
	return nil
}

func (b *batch) Write() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(lightClientBucket)
		for _, o := range b.ops {
			var err error
			if o.delete {
				err = bkt.Delete(o.key)
			} else {
				err = bkt.Put(o.key, o.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.ops = nil
	}
	return err
}
