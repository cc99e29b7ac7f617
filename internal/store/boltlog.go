package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/roach88/blockaviate/internal/block"
)

var blocksBucket = []byte("blocks")

// errBlockExists rejects an Append that would overwrite a stored index.
var errBlockExists = errors.New("block already stored")

// BoltLog persists a chain in a bbolt bucket keyed by big-endian index.
// Values are the canonical record bytes, the same encoding FileLog writes.
type BoltLog struct {
	path string
	db   *bolt.DB
}

// OpenBolt creates or opens a bbolt ledger at the given path.
// Fails with a storage error if another process holds the file lock for more
// than one second.
func OpenBolt(path string) (*BoltLog, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, newStorageError(path, "open database", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, newStorageError(path, "create bucket", err)
	}

	return &BoltLog{path: path, db: db}, nil
}

// Path returns the database location.
func (l *BoltLog) Path() string {
	return l.path
}

// Close releases the file lock.
func (l *BoltLog) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Load returns every block in key order.
func (l *BoltLog) Load(ctx context.Context) ([]block.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks := []block.Block{}
	err := l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(blocksBucket).Cursor()
		row := 0
		for k, v := c.First(); k != nil; k, v = c.Next() {
			row++
			b, err := decodeRecord(v)
			if err != nil {
				return newCorruptError(l.path, row, "malformed record", err)
			}
			if len(k) != 8 || int64(binary.BigEndian.Uint64(k)) != b.Index {
				return newCorruptError(l.path, row, fmt.Sprintf("key does not match index %d", b.Index), nil)
			}
			blocks = append(blocks, b)
		}
		return nil
	})
	if err != nil {
		if IsCorruptRecord(err) {
			return nil, err
		}
		return nil, newStorageError(l.path, "read blocks", err)
	}
	return blocks, nil
}

// Append stores one block. The transaction is fsynced before returning.
func (l *BoltLog) Append(ctx context.Context, b block.Block) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := l.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(blocksBucket)
		key := indexKey(b.Index)
		if bucket.Get(key) != nil {
			return errBlockExists
		}
		return bucket.Put(key, block.MarshalCanonical(b))
	})
	if err != nil {
		return newStorageError(l.path, fmt.Sprintf("put block %d", b.Index), err)
	}
	return nil
}

func indexKey(index int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(index))
	return key
}
