// Package blobstore keeps protocol photo bytes out of the document database.
// Documents carry only image metadata plus a blob key; the bytes live in a
// local BadgerDB keyed by {collection}/{recordID}/{imageID}.
package blobstore

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

// ErrNotFound is returned when a blob key has no stored bytes.
var ErrNotFound = errors.New("blobstore: blob not found")

// Store is a disk-backed blob store for protocol images.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a blob store in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("blobstore: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only for the process. Tests and demos.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("blobstore: open in-memory: %w", err)
	}
	return &Store{db: db}, nil
}

// ImageKey builds the blob key for one protocol image.
func ImageKey(collection, recordID, imageID string) string {
	return fmt.Sprintf("%s/%s/%s", collection, recordID, imageID)
}

// Put stores blob bytes under key, overwriting any previous value.
func (s *Store) Put(key string, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("blobstore: put %s: %w", key, err)
	}
	return nil
}

// Get returns the blob bytes for key.
func (s *Store) Get(key string) ([]byte, error) {
	var result []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("blobstore: get %s: %w", key, err)
	}
	return result, nil
}

// Delete removes one blob. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("blobstore: delete %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every blob under prefix. Used when a record is deleted
// so its photos do not linger.
func (s *Store) DeletePrefix(prefix string) error {
	keys, err := s.keys(prefix)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("blobstore: delete prefix %s: %w", prefix, err)
	}
	return nil
}

func (s *Store) keys(prefix string) ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blobstore: list %s: %w", prefix, err)
	}
	return keys, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
