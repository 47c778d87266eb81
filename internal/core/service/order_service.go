package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Xelaphir/shawa/internal/core/domain"
	"github.com/Xelaphir/shawa/internal/port"
)

// OrderService prices recipe bundles and applies discount vouchers. Pricing
// and voucher consumption commit as one unit of work: a voucher is never
// spent on an order that fails, and an order never reports a discounted
// price for a voucher it could not consume.
type OrderService struct {
	catalog port.CatalogRepository
	orders  port.OrderRepository
}

func NewOrderService(catalog port.CatalogRepository, orders port.OrderRepository) *OrderService {
	return &OrderService{catalog: catalog, orders: orders}
}

func (s *OrderService) PriceOrder(ctx context.Context, customerID int64, recipeQuantities map[int64]int, discountRarity *domain.Rarity) (*domain.Order, error) {
	if len(recipeQuantities) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	var base int64
	items := make([]domain.OrderItem, 0, len(recipeQuantities))
	for recipeID, qty := range recipeQuantities {
		if qty <= 0 {
			return nil, fmt.Errorf("recipe %d: quantity must be positive", recipeID)
		}
		recipe, err := s.catalog.RecipeByID(ctx, recipeID)
		if err != nil {
			return nil, fmt.Errorf("load recipe %d: %w", recipeID, err)
		}
		if recipe == nil {
			return nil, fmt.Errorf("recipe %d: %w", recipeID, domain.ErrNotFound)
		}
		base += recipe.Price * int64(qty)
		items = append(items, domain.OrderItem{RecipeID: recipeID, Quantity: qty})
	}

	final := base
	if discountRarity != nil {
		percent, err := s.catalog.DiscountPercent(ctx, *discountRarity)
		if err != nil {
			return nil, fmt.Errorf("discount for rarity %s: %w", *discountRarity, err)
		}
		final = discountedPrice(base, percent)
	}

	order := domain.Order{
		ID:             uuid.NewString(),
		CustomerID:     customerID,
		Price:          final,
		DiscountRarity: discountRarity,
		Items:          items,
		CreatedAt:      time.Now(),
	}
	if err := s.orders.CreateOrder(ctx, order, discountRarity); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// discountedPrice is floor(base * (100-percent) / 100).
func discountedPrice(base int64, percent int) int64 {
	return decimal.NewFromInt(base).
		Mul(decimal.NewFromInt(int64(100 - percent))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}
