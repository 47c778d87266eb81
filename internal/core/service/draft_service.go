package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Xelaphir/shawa/internal/core/domain"
	"github.com/Xelaphir/shawa/internal/port"
)

// DraftService runs the roulette: a weighted rarity draw followed by a
// uniform pick inside that rarity's pool, credited to the customer's ledger.
type DraftService struct {
	catalog port.CatalogRepository
	ledger  port.LedgerRepository
	randInt func(n int) int
}

func NewDraftService(catalog port.CatalogRepository, ledger port.LedgerRepository) *DraftService {
	return &DraftService{
		catalog: catalog,
		ledger:  ledger,
		randInt: rand.Intn,
	}
}

// WithRand replaces the random source; tests use it to force draws.
func (s *DraftService) WithRand(randInt func(n int) int) *DraftService {
	s.randInt = randInt
	return s
}

func (s *DraftService) Draft(ctx context.Context, customerID int64) (*domain.Component, error) {
	draw := s.randInt(domain.RouletteBound)
	rarity, err := domain.RarityForDraw(draw)
	if err != nil {
		return nil, fmt.Errorf("resolve rarity: %w", err)
	}

	pool, err := s.catalog.DrawableComponents(ctx, rarity)
	if err != nil {
		return nil, fmt.Errorf("load rarity pool: %w", err)
	}
	if len(pool) == 0 {
		// A tier without catalog members is a seeding defect; surfacing it
		// beats silently substituting another tier.
		return nil, fmt.Errorf("rarity %s: %w", rarity, domain.ErrEmptyRarityPool)
	}

	picked := pool[s.randInt(len(pool))]
	if err := s.ledger.CreditComponent(ctx, customerID, picked.ID, 1); err != nil {
		return nil, fmt.Errorf("credit component: %w", err)
	}
	return &picked, nil
}
