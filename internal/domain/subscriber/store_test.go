package subscriber

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStore_GetDefaultsWhenAbsent(t *testing.T) {
	store := NewStore()

	cfg := store.Get(ID(1))

	assert.True(t, cfg.Threshold.Equal(DefaultThreshold))
	assert.Equal(t, ListModeAll, cfg.ListMode)
	assert.Equal(t, 0, store.Count(), "Get must not create an entry")
}

func TestStore_SetLastWriteWins(t *testing.T) {
	store := NewStore()
	id := ID(1)

	store.Set(id, Config{Threshold: decimal.NewFromInt(50_000), ListMode: ListModeAll})
	store.Set(id, Config{Threshold: decimal.NewFromInt(200_000), ListMode: ListModeExcludeTop20})

	cfg := store.Get(id)
	assert.Equal(t, "200000", cfg.Threshold.String())
	assert.Equal(t, ListModeExcludeTop20, cfg.ListMode)
	assert.Equal(t, 1, store.Count())
}

func TestStore_EnsureKeepsExisting(t *testing.T) {
	store := NewStore()
	id := ID(1)

	custom := Config{Threshold: decimal.NewFromInt(1_000_000), ListMode: ListModeExcludeTop50}
	store.Set(id, custom)

	got := store.Ensure(id)

	assert.True(t, got.Threshold.Equal(custom.Threshold))
	assert.Equal(t, custom.ListMode, got.ListMode)
}

func TestStore_EnsureInitializesAbsent(t *testing.T) {
	store := NewStore()

	got := store.Ensure(ID(1))

	assert.True(t, got.Threshold.Equal(DefaultThreshold))
	assert.Equal(t, 1, store.Count(), "Ensure must create the entry")
}

func TestStore_AllIsSnapshot(t *testing.T) {
	store := NewStore()
	store.Set(ID(1), DefaultConfig())
	store.Set(ID(2), DefaultConfig())

	snapshot := store.All()
	delete(snapshot, ID(1))

	assert.Equal(t, 2, store.Count(), "mutating the snapshot must not affect the store")
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			store.Set(ID(n), DefaultConfig())
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.Get(ID(n))
			_ = store.All()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Count())
}

func TestPhaseStore_IdleWhenAbsent(t *testing.T) {
	phases := NewPhaseStore()

	assert.Equal(t, PhaseIdle, phases.Get(ID(1)))
}

func TestPhaseStore_SetAndReset(t *testing.T) {
	phases := NewPhaseStore()
	id := ID(1)

	phases.Set(id, PhaseAwaitingThreshold)
	assert.Equal(t, PhaseAwaitingThreshold, phases.Get(id))

	// Starting another conversation overwrites, no nesting
	phases.Set(id, PhaseAwaitingListMode)
	assert.Equal(t, PhaseAwaitingListMode, phases.Get(id))

	phases.Reset(id)
	assert.Equal(t, PhaseIdle, phases.Get(id))
}

func TestListMode_Valid(t *testing.T) {
	assert.True(t, ListModeAll.Valid())
	assert.True(t, ListModeExcludeTop20.Valid())
	assert.True(t, ListModeExcludeTop50.Valid())
	assert.False(t, ListMode("TOP_100").Valid())
	assert.False(t, ListMode("").Valid())
}
