package data

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowStore_EmptyByDefault(t *testing.T) {
	f := NewFollowStore(NewMemoryStore())

	assert.Empty(t, f.List())
	assert.False(t, f.Contains("m1"))
}

func TestFollowStore_ToggleOnThenOff(t *testing.T) {
	f := NewFollowStore(NewMemoryStore())

	set, following, err := f.Toggle("m1")
	require.NoError(t, err)
	assert.True(t, following)
	assert.Equal(t, []string{"m1"}, set)
	assert.True(t, f.Contains("m1"))

	set, following, err = f.Toggle("m1")
	require.NoError(t, err)
	assert.False(t, following)
	assert.Empty(t, set)
	assert.False(t, f.Contains("m1"))
}

func TestFollowStore_ToggleKeepsOtherEntries(t *testing.T) {
	f := NewFollowStore(NewMemoryStore())

	_, _, err := f.Toggle("m1")
	require.NoError(t, err)
	_, _, err = f.Toggle("m2")
	require.NoError(t, err)

	set, _, err := f.Toggle("m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, set)
}

func TestFollowStore_SanitizesCorruptLegacyData(t *testing.T) {
	store := NewMemoryStore()
	// A faulty earlier version may have persisted duplicates and
	// non-string values.
	require.NoError(t, store.Set(KeyFollows, `["m1", 42, "m2", null, "m1", {"id":"x"}]`))

	f := NewFollowStore(store)
	assert.Equal(t, []string{"m1", "m2"}, f.List())

	set, _, err := f.Toggle("m3")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, set)

	// The persisted blob is clean after the write.
	raw, ok, err := store.Get(KeyFollows)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["m1","m2","m3"]`, raw)
}

func TestFollowStore_ToggleRemovesAllDuplicatesOfID(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyFollows, `["m1","m1","m2"]`))

	f := NewFollowStore(store)
	set, following, err := f.Toggle("m1")
	require.NoError(t, err)
	assert.False(t, following)
	assert.Equal(t, []string{"m2"}, set)
}

func TestFollowStore_CorruptBlobYieldsEmpty(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyFollows, "not json at all"))

	f := NewFollowStore(store)
	assert.Empty(t, f.List())
}

func TestFollowStore_ToggleFailsOnWriteError(t *testing.T) {
	store := &faultyStore{MemoryStore: NewMemoryStore(), setErr: errors.New("disk full")}
	f := NewFollowStore(store)

	_, _, err := f.Toggle("m1")
	assert.Error(t, err)

	store.setErr = nil
	assert.False(t, f.Contains("m1"))
}

func TestFollowStore_ConcurrentTogglesOfDistinctTitles(t *testing.T) {
	f := NewFollowStore(NewMemoryStore())

	ids := []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, err := f.Toggle(id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.ElementsMatch(t, ids, f.List())
}
