package service

import (
	"context"
	"fmt"

	"github.com/Xelaphir/shawa/internal/core/domain"
	"github.com/Xelaphir/shawa/internal/port"
)

// LedgerService answers ownership queries. Reads are display-only, so
// ownership snapshots go through the cache with TTL-bounded staleness;
// nothing read here feeds a mutation.
type LedgerService struct {
	ledger  port.LedgerRepository
	catalog port.CatalogRepository
	cache   port.CacheRepository
}

func NewLedgerService(ledger port.LedgerRepository, catalog port.CatalogRepository, cache port.CacheRepository) *LedgerService {
	return &LedgerService{ledger: ledger, catalog: catalog, cache: cache}
}

// OwnershipOf returns the customer's positive component quantities.
func (s *LedgerService) OwnershipOf(ctx context.Context, customerID int64) (map[int64]int, error) {
	if cached, ok, err := s.cache.GetOwnership(ctx, customerID); err == nil && ok {
		return cached, nil
	}

	quantities, err := s.ledger.ComponentQuantities(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("query ownership: %w", err)
	}
	// Best effort; a failed cache write only costs the next read.
	_ = s.cache.SetOwnership(ctx, customerID, quantities)
	return quantities, nil
}

// ComponentQuantity returns the owned quantity of one component, 0 when the
// customer never held it.
func (s *LedgerService) ComponentQuantity(ctx context.Context, customerID, componentID int64) (int, error) {
	return s.ledger.ComponentQuantity(ctx, customerID, componentID)
}

// VouchersOf materializes a voucher row per catalog tier, then returns all
// rows, so every customer sees every tier at least at quantity 0.
func (s *LedgerService) VouchersOf(ctx context.Context, customerID int64) (map[domain.Rarity]int, error) {
	tiers, err := s.catalog.DiscountTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load discount tiers: %w", err)
	}
	rarities := make([]domain.Rarity, 0, len(tiers))
	for _, tier := range tiers {
		rarities = append(rarities, tier.Rarity)
	}

	if err := s.ledger.EnsureVoucherRows(ctx, customerID, rarities); err != nil {
		return nil, fmt.Errorf("materialize voucher rows: %w", err)
	}
	return s.ledger.VoucherQuantities(ctx, customerID)
}
