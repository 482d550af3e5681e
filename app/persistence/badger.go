package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Badger implements storage with embedded badger database
type Badger struct {
	db *badger.DB
}

// NewBadger opens badger database in location directory. Empty location makes in-memory database.
func NewBadger(location string) (*Badger, error) {
	opts := badger.DefaultOptions(location).WithLogger(nil)
	if location == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", location, err)
	}
	return &Badger{db: db}, nil
}

// Get retrieves a copy of the value for the key
func (b *Badger) Get(_ context.Context, key string) (res []byte, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		item, e := txn.Get([]byte(key))
		if e != nil {
			return e
		}
		res, e = item.ValueCopy(nil)
		return e
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return res, nil
}

// Set stores value for the key
func (b *Badger) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the key, no error if missing
func (b *Badger) Remove(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Close closes badger database
func (b *Badger) Close() error {
	return b.db.Close()
}
