package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS cache_entries (
  key    TEXT PRIMARY KEY,
  value  BLOB NOT NULL
);
`

// SQLiteCache stores values in a single sqlite table.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLiteCache opens the database at path with WAL enabled and creates the
// table when missing.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Load(key string, dst any) (bool, error) {
	var raw []byte
	err := c.db.QueryRow(`SELECT value FROM cache_entries WHERE key = ?`, keyPrefix+key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite load %s: %w", key, err)
	}
	if err := decode(raw, dst); err != nil {
		return false, fmt.Errorf("sqlite load %s: %w", key, err)
	}
	return true, nil
}

func (c *SQLiteCache) Save(key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return fmt.Errorf("sqlite save %s: %w", key, err)
	}
	_, err = c.db.Exec(`INSERT INTO cache_entries (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, keyPrefix+key, raw)
	if err != nil {
		return fmt.Errorf("sqlite save %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("sqlite clear: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
