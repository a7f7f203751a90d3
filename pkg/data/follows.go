package data

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// FollowStore is the locally persisted set of followed manga ids,
// stored as a JSON array under KeyFollows. Local state is the
// authoritative truth for this device; remote sync happens above this
// layer. Toggles share one critical section so concurrent toggles for
// different titles cannot lose each other's writes.
type FollowStore struct {
	store Store
	mu    sync.Mutex
}

func NewFollowStore(store Store) *FollowStore {
	return &FollowStore{store: store}
}

// load reads and sanitizes the persisted set. The blob may have been
// written by a faulty earlier version, so non-string entries are
// dropped and duplicates collapsed; a missing or corrupt blob yields
// an empty set.
func (f *FollowStore) load() ([]string, error) {
	raw, ok, err := f.store.Get(KeyFollows)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	var entries []any
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []string{}, nil
	}
	return sanitize(entries), nil
}

func sanitize(entries []any) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		id, ok := e.(string)
		if !ok || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// List returns the sanitized follow set.
func (f *FollowStore) List() []string {
	ids, err := f.load()
	if err != nil {
		return []string{}
	}
	return ids
}

func (f *FollowStore) Contains(mangaID string) bool {
	return slices.Contains(f.List(), mangaID)
}

// Toggle flips membership of mangaID and persists the result before
// returning. Membership is read fresh inside the critical section, so
// two rapid toggles of the same title net out instead of double-adding.
// The returned bool reports whether the title is followed afterwards.
func (f *FollowStore) Toggle(mangaID string) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids, err := f.load()
	if err != nil {
		return nil, false, fmt.Errorf("reading follows: %w", err)
	}

	wasFollowing := slices.Contains(ids, mangaID)
	ids = slices.DeleteFunc(ids, func(id string) bool { return id == mangaID })
	if !wasFollowing {
		ids = append(ids, mangaID)
	}

	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, false, fmt.Errorf("encoding follows: %w", err)
	}
	if err := f.store.Set(KeyFollows, string(raw)); err != nil {
		return nil, false, fmt.Errorf("writing follows: %w", err)
	}
	return ids, !wasFollowing, nil
}
