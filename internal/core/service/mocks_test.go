package service

import (
	"context"
	"sync"

	"github.com/Xelaphir/shawa/internal/adapter/storage"
	"github.com/Xelaphir/shawa/internal/core/domain"
)

// Mock CacheRepository
type mockCache struct {
	mu          sync.Mutex
	snapshots   map[int64]map[int64]int
	idempotency map[string]bool
	invalidates int
}

func newMockCache() *mockCache {
	return &mockCache{
		snapshots:   make(map[int64]map[int64]int),
		idempotency: make(map[string]bool),
	}
}

func (m *mockCache) GetOwnership(ctx context.Context, customerID int64) (map[int64]int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.snapshots[customerID]
	if !ok {
		return nil, false, nil
	}
	out := make(map[int64]int, len(snapshot))
	for k, v := range snapshot {
		out[k] = v
	}
	return out, true, nil
}

func (m *mockCache) SetOwnership(ctx context.Context, customerID int64, quantities map[int64]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[int64]int, len(quantities))
	for k, v := range quantities {
		copied[k] = v
	}
	m.snapshots[customerID] = copied
	return nil
}

func (m *mockCache) InvalidateOwnership(ctx context.Context, customerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, customerID)
	m.invalidates++
	return nil
}

func (m *mockCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idempotency[key] {
		return false, nil
	}
	m.idempotency[key] = true
	return true, nil
}

// newTestStore seeds the in-memory store with a small catalog: one drawable
// component per rarity tier (component 42 in especial), a common component,
// recipes and the discount tiers.
func newTestStore() *storage.MemoryAdapter {
	store := storage.NewMemoryAdapter()

	store.SeedComponent(domain.Component{ID: 1, Rarity: domain.RarityLegendary, Cost: 500, MinQty: 1, MaxQty: 5, QtyStep: 1, Name: "gold leaf"})
	store.SeedComponent(domain.Component{ID: 2, Rarity: domain.RarityMythical, Cost: 200, MinQty: 1, MaxQty: 5, QtyStep: 1, Name: "black garlic"})
	store.SeedComponent(domain.Component{ID: 3, Rarity: domain.RarityEpic, Cost: 100, MinQty: 10, MaxQty: 50, QtyStep: 10, Name: "truffle"})
	store.SeedComponent(domain.Component{ID: 42, Rarity: domain.RarityEspecial, Cost: 50, MinQty: 10, MaxQty: 100, QtyStep: 10, Name: "halloumi"})
	store.SeedComponent(domain.Component{ID: 5, Rarity: domain.RarityRare, Cost: 20, MinQty: 10, MaxQty: 100, QtyStep: 10, Name: "pickled onion"})
	store.SeedComponent(domain.Component{ID: 6, Rarity: domain.RarityCommon, IsCommon: true, Cost: 5, MinQty: 50, MaxQty: 300, QtyStep: 50, Name: "lavash"})

	store.SeedRecipe(domain.Recipe{ID: 1, AuthorID: 1, Name: "classic", Price: 300})
	store.SeedRecipe(domain.Recipe{ID: 2, AuthorID: 1, Name: "deluxe", Price: 450})
	store.SeedRecipe(domain.Recipe{ID: 3, AuthorID: 2, Name: "odd priced", Price: 333})

	store.SeedDiscountTier(domain.DiscountTier{Rarity: domain.RarityLegendary, Percent: 50})
	store.SeedDiscountTier(domain.DiscountTier{Rarity: domain.RarityMythical, Percent: 40})
	store.SeedDiscountTier(domain.DiscountTier{Rarity: domain.RarityEpic, Percent: 30})
	store.SeedDiscountTier(domain.DiscountTier{Rarity: domain.RarityEspecial, Percent: 20})
	store.SeedDiscountTier(domain.DiscountTier{Rarity: domain.RarityRare, Percent: 10})

	return store
}

// fixedDraws returns a rand function that replays the given values in order
// and repeats the last one after that.
func fixedDraws(values ...int) func(int) int {
	i := 0
	var mu sync.Mutex
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v % n
	}
}
