package data

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// InitDuckDB opens (creating if needed) the state database at path and
// ensures the app_state table exists.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS app_state (
		key   VARCHAR PRIMARY KEY,
		value VARCHAR NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// DuckDBStore is the durable Store backing the manifest and follow
// set. One row per well-known key; values are JSON blobs.
type DuckDBStore struct {
	db *sql.DB
}

func NewDuckDBStore(path string) (*DuckDBStore, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return &DuckDBStore{db: db}, nil
}

func (s *DuckDBStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *DuckDBStore) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
