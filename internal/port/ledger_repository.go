package port

import (
	"context"

	"github.com/Xelaphir/shawa/internal/core/domain"
)

type LedgerRepository interface {
	// CreditComponent adds qty units to the (customer, component) row,
	// creating it if absent. Safe under concurrent credits of the same row.
	CreditComponent(ctx context.Context, customerID, componentID int64, qty int) error

	// DebitComponent removes qty units, failing with
	// domain.ErrInsufficientQuantity if the row would go negative.
	DebitComponent(ctx context.Context, customerID, componentID int64, qty int) error

	// ComponentQuantity returns the owned quantity, 0 when no row exists.
	ComponentQuantity(ctx context.Context, customerID, componentID int64) (int, error)

	// ComponentQuantities returns all positive rows for a customer.
	ComponentQuantities(ctx context.Context, customerID int64) (map[int64]int, error)

	// EnsureVoucherRows creates a quantity-0 voucher row for every given
	// rarity that has none. Idempotent and race-safe on the unique key.
	EnsureVoucherRows(ctx context.Context, customerID int64, rarities []domain.Rarity) error

	// VoucherQuantities returns every materialized voucher row.
	VoucherQuantities(ctx context.Context, customerID int64) (map[domain.Rarity]int, error)

	// CreditVoucher adds qty vouchers of a rarity, creating the row if
	// absent.
	CreditVoucher(ctx context.Context, customerID int64, rarity domain.Rarity, qty int) error
}
