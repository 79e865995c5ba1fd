package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

const badgerKeyPrefix = "slot/"

// BadgerSlot keeps slots in an embedded badger database
type BadgerSlot struct {
	db *badger.DB
}

// OpenBadgerSlot opens (or creates) a badger database at path
func OpenBadgerSlot(path string) (*BadgerSlot, error) {
	if path == "" {
		return nil, errors.New("badger path not set")
	}
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(true)
	return openBadger(opts)
}

// OpenInMemoryBadgerSlot opens a badger database that lives only in memory
func OpenInMemoryBadgerSlot() (*BadgerSlot, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerSlot, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &BadgerSlot{db: db}, nil
}

func (s *BadgerSlot) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *BadgerSlot) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

func (s *BadgerSlot) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

func (s *BadgerSlot) Close() error {
	return s.db.Close()
}
