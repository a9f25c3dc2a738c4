// Package cache persists small values, such as variadic detection results,
// across runs.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"path/filepath"

	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("phpreflect.cache")

// keyPrefix versions the on-disk layout. Bump it when stored values change shape.
const keyPrefix = "phpreflect/v1/"

const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Cache loads and saves gob encodable values by key.
// Load reports false without error when the key is absent.
type Cache interface {
	Load(key string, dst any) (bool, error)
	Save(key string, value any) error
}

// Store is a Cache that owns resources.
type Store interface {
	Cache
	Clear() error
	Close() error
}

// New opens the backend by name. dir holds the persistent backends' files.
func New(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryCache(), nil
	case BackendBadger:
		return OpenBadgerCache(filepath.Join(dir, "badger"))
	case BackendSQLite:
		return OpenSQLiteCache(filepath.Join(dir, "cache.sqlite"))
	}
	return nil, fmt.Errorf("unknown cache backend %q", backend)
}

func encode(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, dst any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(dst); err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}
	return nil
}
