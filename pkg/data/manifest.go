package data

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Manifest is the persisted record of fully downloaded chapters,
// stored as a single JSON blob under KeyDownloads. All commits go
// through one read-modify-write critical section so chapters finishing
// at the same instant cannot overwrite each other's entries.
type Manifest struct {
	store Store
	mu    sync.Mutex
}

func NewManifest(store Store) *Manifest {
	return &Manifest{store: store}
}

// load decodes the current mapping. A missing or corrupt blob decodes
// to an empty mapping; a store read error is returned as-is so a
// commit never replaces the manifest with an empty one on a transient
// fault.
func (m *Manifest) load() (map[string]DownloadRecord, error) {
	raw, ok, err := m.store.Get(KeyDownloads)
	if err != nil {
		return nil, err
	}
	records := make(map[string]DownloadRecord)
	if !ok {
		return records, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return make(map[string]DownloadRecord), nil
	}
	return records, nil
}

// Get returns the record for key, if the chapter is downloaded.
func (m *Manifest) Get(key string) (DownloadRecord, bool) {
	records, err := m.load()
	if err != nil {
		return DownloadRecord{}, false
	}
	rec, ok := records[key]
	return rec, ok
}

func (m *Manifest) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Records returns a snapshot of the whole mapping, for listing
// downloaded chapters.
func (m *Manifest) Records() map[string]DownloadRecord {
	records, err := m.load()
	if err != nil {
		return make(map[string]DownloadRecord)
	}
	return records
}

// Commit durably inserts rec under its chapter key. Concurrent commits
// are serialized; both entries survive.
func (m *Manifest) Commit(rec DownloadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.load()
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	records[rec.Key()] = rec

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := m.store.Set(KeyDownloads, string(raw)); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
