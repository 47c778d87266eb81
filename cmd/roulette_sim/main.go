// roulette_sim hammers the draft path against the in-memory store and
// reports the observed rarity distribution, for eyeballing the weighted
// draw against its nominal 1/5/20/30/44 percent split.
package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/Xelaphir/shawa/internal/adapter/storage"
	"github.com/Xelaphir/shawa/internal/core/domain"
	"github.com/Xelaphir/shawa/internal/core/service"
)

const (
	customerID  = 1
	totalDrafts = 100000
	workers     = 8
)

func main() {
	ctx := context.Background()

	store := storage.NewMemoryAdapter()
	seedCatalog(store)

	draftService := service.NewDraftService(store, store)

	var counts [7]atomic.Int64
	var failures atomic.Int64

	jobs := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				comp, err := draftService.Draft(ctx, customerID)
				if err != nil {
					failures.Add(1)
					continue
				}
				counts[comp.Rarity].Add(1)
			}
		}()
	}
	for i := 0; i < totalDrafts; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()

	var credited int
	quantities, _ := store.ComponentQuantities(ctx, customerID)
	for _, qty := range quantities {
		credited += qty
	}

	for _, rarity := range domain.DrawableRarities() {
		n := counts[rarity].Load()
		log.Info().
			Str("rarity", rarity.String()).
			Int64("drafts", n).
			Float64("share", float64(n)/float64(totalDrafts)).
			Msg("rarity distribution")
	}
	log.Info().
		Int64("failures", failures.Load()).
		Int("ledger_credits", credited).
		Int("drafts", totalDrafts).
		Msg("done")
}

func seedCatalog(store *storage.MemoryAdapter) {
	id := int64(1)
	for _, rarity := range domain.DrawableRarities() {
		// a few drawable components per tier
		for i := 0; i < 3; i++ {
			store.SeedComponent(domain.Component{
				ID:      id,
				Rarity:  rarity,
				Cost:    10,
				MinQty:  10,
				MaxQty:  100,
				QtyStep: 10,
				Name:    rarity.String(),
			})
			id++
		}
	}
	store.SeedComponent(domain.Component{
		ID: id, Rarity: domain.RarityCommon, IsCommon: true,
		Cost: 1, MinQty: 10, MaxQty: 100, QtyStep: 10, Name: "common",
	})
}
