package port

import (
	"context"

	"github.com/Xelaphir/shawa/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrder persists the order and its items. When consumeRarity is
	// set, one voucher of that rarity is decremented in the same unit of
	// work; domain.ErrNoVoucherAvailable rolls the whole order back.
	CreateOrder(ctx context.Context, order domain.Order, consumeRarity *domain.Rarity) error
}
