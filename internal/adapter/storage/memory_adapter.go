package storage

import (
	"context"
	"sync"

	"github.com/Xelaphir/shawa/internal/core/domain"
)

// MemoryAdapter is an in-process store with the same port semantics as the
// MySQL adapter: one mutex stands in for the database transaction, so every
// multi-row operation is all-or-nothing. It backs the service unit tests
// and cmd/roulette_sim.
type MemoryAdapter struct {
	mu sync.Mutex

	// ledgers
	components map[int64]map[int64]int         // customer -> component -> qty
	vouchers   map[int64]map[domain.Rarity]int // customer -> rarity -> qty

	lots   map[string]*domain.Lot
	orders map[string]domain.Order

	// catalog, seeded once before use
	catalogComponents map[int64]domain.Component
	catalogRecipes    map[int64]domain.Recipe
	discountTiers     map[domain.Rarity]int
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		components:        make(map[int64]map[int64]int),
		vouchers:          make(map[int64]map[domain.Rarity]int),
		lots:              make(map[string]*domain.Lot),
		orders:            make(map[string]domain.Order),
		catalogComponents: make(map[int64]domain.Component),
		catalogRecipes:    make(map[int64]domain.Recipe),
		discountTiers:     make(map[domain.Rarity]int),
	}
}

// SeedComponent, SeedRecipe and SeedDiscountTier load the read-only catalog.

func (m *MemoryAdapter) SeedComponent(c domain.Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogComponents[c.ID] = c
}

func (m *MemoryAdapter) SeedRecipe(r domain.Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogRecipes[r.ID] = r
}

func (m *MemoryAdapter) SeedDiscountTier(t domain.DiscountTier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discountTiers[t.Rarity] = t.Percent
}

// --- LedgerRepository ---

func (m *MemoryAdapter) CreditComponent(ctx context.Context, customerID, componentID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.components[customerID]
	if rows == nil {
		rows = make(map[int64]int)
		m.components[customerID] = rows
	}
	next, err := domain.ApplyDelta(rows[componentID], qty)
	if err != nil {
		return err
	}
	rows[componentID] = next
	return nil
}

func (m *MemoryAdapter) DebitComponent(ctx context.Context, customerID, componentID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.components[customerID]
	next, err := domain.ApplyDelta(rows[componentID], -qty)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = make(map[int64]int)
		m.components[customerID] = rows
	}
	rows[componentID] = next
	return nil
}

func (m *MemoryAdapter) ComponentQuantity(ctx context.Context, customerID, componentID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.components[customerID][componentID], nil
}

func (m *MemoryAdapter) ComponentQuantities(ctx context.Context, customerID int64) (map[int64]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]int)
	for componentID, qty := range m.components[customerID] {
		if qty > 0 {
			out[componentID] = qty
		}
	}
	return out, nil
}

func (m *MemoryAdapter) EnsureVoucherRows(ctx context.Context, customerID int64, rarities []domain.Rarity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.vouchers[customerID]
	if rows == nil {
		rows = make(map[domain.Rarity]int)
		m.vouchers[customerID] = rows
	}
	for _, rarity := range rarities {
		if _, ok := rows[rarity]; !ok {
			rows[rarity] = 0
		}
	}
	return nil
}

func (m *MemoryAdapter) VoucherQuantities(ctx context.Context, customerID int64) (map[domain.Rarity]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.Rarity]int, len(m.vouchers[customerID]))
	for rarity, qty := range m.vouchers[customerID] {
		out[rarity] = qty
	}
	return out, nil
}

func (m *MemoryAdapter) CreditVoucher(ctx context.Context, customerID int64, rarity domain.Rarity, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.vouchers[customerID]
	if rows == nil {
		rows = make(map[domain.Rarity]int)
		m.vouchers[customerID] = rows
	}
	next, err := domain.ApplyDelta(rows[rarity], qty)
	if err != nil {
		return err
	}
	rows[rarity] = next
	return nil
}

// --- LotRepository ---

// reservedLocked sums the reservations a seller holds on a component across
// open lots. Callers hold m.mu.
func (m *MemoryAdapter) reservedLocked(sellerID, componentID int64) int {
	total := 0
	for _, lot := range m.lots {
		if lot.SellerID != sellerID || lot.Status != domain.LotStatusOpen {
			continue
		}
		for _, item := range lot.Items {
			if item.ComponentID == componentID {
				total += item.Quantity
			}
		}
	}
	return total
}

func (m *MemoryAdapter) CreateLot(ctx context.Context, lot domain.Lot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range lot.Items {
		available := m.components[lot.SellerID][item.ComponentID] - m.reservedLocked(lot.SellerID, item.ComponentID)
		if available < item.Quantity {
			return domain.ErrInsufficientQuantity
		}
	}
	stored := copyLot(&lot)
	m.lots[lot.ID] = stored
	return nil
}

func (m *MemoryAdapter) GetLot(ctx context.Context, lotID string) (*domain.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lot, ok := m.lots[lotID]
	if !ok {
		return nil, nil
	}
	return copyLot(lot), nil
}

func (m *MemoryAdapter) OpenLots(ctx context.Context) ([]domain.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Lot
	for _, lot := range m.lots {
		if lot.Status == domain.LotStatusOpen {
			out = append(out, *copyLot(lot))
		}
	}
	return out, nil
}

func (m *MemoryAdapter) PurchaseLot(ctx context.Context, lotID string, purchaserID int64) (*domain.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lot, ok := m.lots[lotID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if lot.Status != domain.LotStatusOpen {
		return nil, domain.ErrLotNotOpen
	}
	if lot.SellerID == purchaserID {
		return nil, domain.ErrSelfPurchase
	}
	// The listing invariant makes a shortfall impossible; verify anyway and
	// abort before mutating anything.
	for _, item := range lot.Items {
		if m.components[lot.SellerID][item.ComponentID] < item.Quantity {
			return nil, domain.ErrReservationViolation
		}
	}
	for _, item := range lot.Items {
		m.components[lot.SellerID][item.ComponentID] -= item.Quantity
		rows := m.components[purchaserID]
		if rows == nil {
			rows = make(map[int64]int)
			m.components[purchaserID] = rows
		}
		rows[item.ComponentID] += item.Quantity
	}
	lot.Status = domain.LotStatusSold
	lot.PurchaserID = &purchaserID
	return copyLot(lot), nil
}

func (m *MemoryAdapter) CancelLot(ctx context.Context, lotID string, requesterID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lot, ok := m.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	if lot.SellerID != requesterID {
		return domain.ErrNotSeller
	}
	if lot.Status != domain.LotStatusOpen {
		return domain.ErrLotNotOpen
	}
	lot.Status = domain.LotStatusCancelled
	return nil
}

// --- OrderRepository ---

func (m *MemoryAdapter) CreateOrder(ctx context.Context, order domain.Order, consumeRarity *domain.Rarity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if consumeRarity != nil {
		if m.vouchers[order.CustomerID][*consumeRarity] < 1 {
			return domain.ErrNoVoucherAvailable
		}
		m.vouchers[order.CustomerID][*consumeRarity]--
	}
	m.orders[order.ID] = order
	return nil
}

// --- CatalogRepository ---

func (m *MemoryAdapter) ComponentByID(ctx context.Context, componentID int64) (*domain.Component, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comp, ok := m.catalogComponents[componentID]
	if !ok {
		return nil, nil
	}
	return &comp, nil
}

func (m *MemoryAdapter) DrawableComponents(ctx context.Context, rarity domain.Rarity) ([]domain.Component, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Component
	for _, comp := range m.catalogComponents {
		if comp.Rarity == rarity && !comp.IsCommon {
			out = append(out, comp)
		}
	}
	return out, nil
}

func (m *MemoryAdapter) RecipeByID(ctx context.Context, recipeID int64) (*domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recipe, ok := m.catalogRecipes[recipeID]
	if !ok {
		return nil, nil
	}
	return &recipe, nil
}

func (m *MemoryAdapter) DiscountPercent(ctx context.Context, rarity domain.Rarity) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	percent, ok := m.discountTiers[rarity]
	if !ok {
		return 0, domain.ErrUnknownRarity
	}
	return percent, nil
}

func (m *MemoryAdapter) DiscountTiers(ctx context.Context) ([]domain.DiscountTier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DiscountTier
	for rarity, percent := range m.discountTiers {
		out = append(out, domain.DiscountTier{Rarity: rarity, Percent: percent})
	}
	return out, nil
}

func copyLot(lot *domain.Lot) *domain.Lot {
	dup := *lot
	dup.Items = append([]domain.LotItem(nil), lot.Items...)
	if lot.PurchaserID != nil {
		purchaser := *lot.PurchaserID
		dup.PurchaserID = &purchaser
	}
	return &dup
}
