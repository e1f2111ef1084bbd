// ABOUTME: Key-value interface shared by Charm cloud KV and the local Badger KV
// ABOUTME: LocalKV stores completions on disk without a charm server
package charm

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// KV is the subset of charm/kv.KV the client uses
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
	Close() error
}

// ErrNotFound is returned by Client.Get for a missing key
var ErrNotFound = errors.New("key not found")

func isNotFound(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound) || errors.Is(err, ErrNotFound)
}

// LocalKV is a Badger-backed KV with no remote. Sync is a no-op.
type LocalKV struct {
	db *badger.DB
}

var _ KV = (*LocalKV)(nil)

// OpenLocalKV opens (or creates) a Badger database in dir
func OpenLocalKV(dir string) (*LocalKV, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create kv directory: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &LocalKV{db: db}, nil
}

// OpenInMemoryKV opens a Badger database that lives only in memory
func OpenInMemoryKV() (*LocalKV, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger: %w", err)
	}
	return &LocalKV{db: db}, nil
}

func (l *LocalKV) Get(key []byte) ([]byte, error) {
	var result []byte
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (l *LocalKV) Set(key, value []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (l *LocalKV) Delete(key []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (l *LocalKV) Keys() ([][]byte, error) {
	var keys [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (l *LocalKV) Sync() error {
	return nil
}

func (l *LocalKV) Reset() error {
	return l.db.DropAll()
}

func (l *LocalKV) Close() error {
	return l.db.Close()
}
