package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Xelaphir/shawa/internal/core/domain"
	"github.com/Xelaphir/shawa/internal/port"
)

// ExchangeService runs the auction side of the economy: listing reserves
// owned quantities into a lot, purchasing transfers them, cancelling
// releases them. Every sold lot emits a TradeEvent; workers settle those by
// crediting the seller's voucher ledger.
type ExchangeService struct {
	lots        port.LotRepository
	ledger      port.LedgerRepository
	catalog     port.CatalogRepository
	cache       port.CacheRepository
	tradeEvents chan domain.TradeEvent
}

func NewExchangeService(lots port.LotRepository, ledger port.LedgerRepository, catalog port.CatalogRepository, cache port.CacheRepository, queueSize int) *ExchangeService {
	return &ExchangeService{
		lots:        lots,
		ledger:      ledger,
		catalog:     catalog,
		cache:       cache,
		tradeEvents: make(chan domain.TradeEvent, queueSize),
	}
}

// ListLot reserves the given quantities into a new open lot. Duplicate
// component entries are merged before the atomic availability check.
func (s *ExchangeService) ListLot(ctx context.Context, sellerID, price int64, items []domain.LotItem) (*domain.Lot, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("lot must contain at least one item")
	}

	merged := make(map[int64]int, len(items))
	order := make([]int64, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("component %d: reserved quantity must be positive", item.ComponentID)
		}
		if _, seen := merged[item.ComponentID]; !seen {
			order = append(order, item.ComponentID)
		}
		merged[item.ComponentID] += item.Quantity
	}

	lot := domain.Lot{
		ID:        uuid.NewString(),
		SellerID:  sellerID,
		Price:     price,
		Status:    domain.LotStatusOpen,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, componentID := range order {
		comp, err := s.catalog.ComponentByID(ctx, componentID)
		if err != nil {
			return nil, fmt.Errorf("load component %d: %w", componentID, err)
		}
		if comp == nil {
			return nil, fmt.Errorf("component %d: %w", componentID, domain.ErrNotFound)
		}
		lot.Items = append(lot.Items, domain.LotItem{ComponentID: componentID, Quantity: merged[componentID]})
	}

	if err := s.lots.CreateLot(ctx, lot); err != nil {
		return nil, fmt.Errorf("create lot: %w", err)
	}
	return &lot, nil
}

// Purchase transfers a lot's reserved quantities from seller to purchaser
// and emits the trade event once the transfer committed.
func (s *ExchangeService) Purchase(ctx context.Context, lotID string, purchaserID int64) (*domain.Lot, error) {
	lot, err := s.lots.PurchaseLot(ctx, lotID, purchaserID)
	if err != nil {
		return nil, fmt.Errorf("purchase lot: %w", err)
	}

	_ = s.cache.InvalidateOwnership(ctx, lot.SellerID)
	_ = s.cache.InvalidateOwnership(ctx, purchaserID)

	componentIDs := make([]int64, 0, len(lot.Items))
	for _, item := range lot.Items {
		componentIDs = append(componentIDs, item.ComponentID)
	}
	s.tradeEvents <- domain.TradeEvent{
		LotID:        lot.ID,
		SellerID:     lot.SellerID,
		PurchaserID:  purchaserID,
		ComponentIDs: componentIDs,
	}
	return lot, nil
}

// Cancel releases the lot's reservations. Only the seller may cancel.
func (s *ExchangeService) Cancel(ctx context.Context, lotID string, requesterID int64) error {
	if err := s.lots.CancelLot(ctx, lotID, requesterID); err != nil {
		return fmt.Errorf("cancel lot: %w", err)
	}
	return nil
}

func (s *ExchangeService) GetLot(ctx context.Context, lotID string) (*domain.Lot, error) {
	lot, err := s.lots.GetLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return lot, nil
}

func (s *ExchangeService) OpenLots(ctx context.Context) ([]domain.Lot, error) {
	return s.lots.OpenLots(ctx)
}

// SettleTrade credits the seller one voucher per distinct rarity among the
// sold components. Called by the trade workers.
func (s *ExchangeService) SettleTrade(ctx context.Context, event domain.TradeEvent) error {
	seen := make(map[domain.Rarity]bool)
	for _, componentID := range event.ComponentIDs {
		comp, err := s.catalog.ComponentByID(ctx, componentID)
		if err != nil {
			return fmt.Errorf("load component %d: %w", componentID, err)
		}
		if comp == nil || seen[comp.Rarity] {
			continue
		}
		seen[comp.Rarity] = true
		if err := s.ledger.CreditVoucher(ctx, event.SellerID, comp.Rarity, 1); err != nil {
			return fmt.Errorf("credit voucher rarity %s: %w", comp.Rarity, err)
		}
	}
	return nil
}

func (s *ExchangeService) TradeEvents() <-chan domain.TradeEvent {
	return s.tradeEvents
}

func (s *ExchangeService) Close() {
	close(s.tradeEvents)
}
