package cache

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

var errMiss = errors.New("cache miss")

// BadgerCache stores values in a badger key/value directory.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadgerCache opens (creating if needed) the database in dir.
func OpenBadgerCache(dir string) (*BadgerCache, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger cache %s: %w", dir, err)
	}
	return &BadgerCache{db: db}, nil
}

// NewBadgerCache wraps an already opened database.
func NewBadgerCache(db *badger.DB) *BadgerCache {
	if db == nil {
		panic("NewBadgerCache: db must not be nil")
	}
	return &BadgerCache{db: db}
}

func (c *BadgerCache) Load(key string, dst any) (bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errMiss
		}
		if err != nil {
			return fmt.Errorf("get cache key: %w", err)
		}
		raw, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("copy value: %w", err)
		}
		return nil
	})
	if errors.Is(err, errMiss) {
		logger.Debugf("badger miss %s", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("badger load %s: %w", key, err)
	}
	if err := decode(raw, dst); err != nil {
		return false, fmt.Errorf("badger load %s: %w", key, err)
	}
	logger.Debugf("badger hit %s", key)
	return true, nil
}

func (c *BadgerCache) Save(key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return fmt.Errorf("badger save %s: %w", key, err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(keyPrefix+key), raw))
	})
	if err != nil {
		return fmt.Errorf("badger save %s: %w", key, err)
	}
	return nil
}

// Clear drops every cached value written by this package.
func (c *BadgerCache) Clear() error {
	if err := c.db.DropPrefix([]byte(keyPrefix)); err != nil {
		return fmt.Errorf("badger clear: %w", err)
	}
	return nil
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}
