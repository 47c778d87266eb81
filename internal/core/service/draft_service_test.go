package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/Xelaphir/shawa/internal/adapter/storage"
	"github.com/Xelaphir/shawa/internal/core/domain"
)

func TestDraft_CreditsChosenComponent(t *testing.T) {
	store := newTestStore()
	svc := NewDraftService(store, store).WithRand(fixedDraws(0))

	comp, err := svc.Draft(context.Background(), 7)
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}
	if comp.ID != 1 || comp.Rarity != domain.RarityLegendary {
		t.Errorf("draw 0 should yield the legendary component, got %+v", comp)
	}

	qty, _ := store.ComponentQuantity(context.Background(), 7, 1)
	if qty != 1 {
		t.Errorf("expected ledger quantity 1, got %d", qty)
	}
}

func TestDraft_EmptyRarityPool(t *testing.T) {
	store := storage.NewMemoryAdapter()
	// only an especial component exists; the legendary pool is empty
	store.SeedComponent(domain.Component{ID: 42, Rarity: domain.RarityEspecial, Name: "halloumi"})
	svc := NewDraftService(store, store).WithRand(fixedDraws(0))

	_, err := svc.Draft(context.Background(), 7)
	if !errors.Is(err, domain.ErrEmptyRarityPool) {
		t.Fatalf("expected ErrEmptyRarityPool, got %v", err)
	}

	quantities, _ := store.ComponentQuantities(context.Background(), 7)
	if len(quantities) != 0 {
		t.Errorf("failed draft must not credit the ledger, got %v", quantities)
	}
}

func TestDraft_CommonComponentsNeverDrawn(t *testing.T) {
	store := storage.NewMemoryAdapter()
	// the only rare-tier component is common, so the rare pool is empty
	store.SeedComponent(domain.Component{ID: 6, Rarity: domain.RarityRare, IsCommon: true, Name: "lavash"})
	svc := NewDraftService(store, store).WithRand(fixedDraws(99))

	_, err := svc.Draft(context.Background(), 7)
	if !errors.Is(err, domain.ErrEmptyRarityPool) {
		t.Fatalf("expected ErrEmptyRarityPool, got %v", err)
	}
}

func TestDraft_NCreditsSumToN(t *testing.T) {
	store := newTestStore()
	rng := rand.New(rand.NewSource(1))
	var mu sync.Mutex
	svc := NewDraftService(store, store).WithRand(func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rng.Intn(n)
	})

	const drafts = 200
	for i := 0; i < drafts; i++ {
		if _, err := svc.Draft(context.Background(), 7); err != nil {
			t.Fatalf("draft %d failed: %v", i, err)
		}
	}

	quantities, _ := store.ComponentQuantities(context.Background(), 7)
	total := 0
	for _, qty := range quantities {
		total += qty
	}
	if total != drafts {
		t.Errorf("expected %d total credits, got %d", drafts, total)
	}
}

func TestDraft_ConcurrentNoLostUpdate(t *testing.T) {
	store := newTestStore()
	svc := NewDraftService(store, store).WithRand(fixedDraws(0)) // always component 1

	const goroutines = 10
	const perGoroutine = 20
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if _, err := svc.Draft(context.Background(), 7); err != nil {
					t.Errorf("draft failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	qty, _ := store.ComponentQuantity(context.Background(), 7, 1)
	if qty != goroutines*perGoroutine {
		t.Errorf("expected %d credits, got %d", goroutines*perGoroutine, qty)
	}
}
