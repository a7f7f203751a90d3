package data

import "sync"

// Well-known store keys shared with earlier app versions; the values
// are JSON blobs.
const (
	KeyDownloads = "downloads"
	KeyFollows   = "follows"
	KeyToken     = "token"
)

// Store is the durable string-keyed storage capability the core runs
// on. Implementations must be safe for concurrent use; blob-level
// read-modify-write serialization is handled above this interface.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set writes the value for key, overwriting any previous value.
	Set(key, value string) error
	Close() error
}

// MemoryStore is an in-process Store used by tests and previews.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryStore) Close() error { return nil }
