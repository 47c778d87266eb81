package port

import (
	"context"

	"github.com/Xelaphir/shawa/internal/core/domain"
)

type LotRepository interface {
	// CreateLot persists an open lot and its items after checking, atomically
	// across all items, that the seller's available quantity (owned minus
	// reserved in other open lots) covers each reservation. Fails with
	// domain.ErrInsufficientQuantity without creating anything.
	CreateLot(ctx context.Context, lot domain.Lot) error

	// GetLot returns the lot with its items, or nil when it does not exist.
	GetLot(ctx context.Context, lotID string) (*domain.Lot, error)

	// OpenLots returns every open lot with items.
	OpenLots(ctx context.Context) ([]domain.Lot, error)

	// PurchaseLot atomically debits the seller, credits the purchaser and
	// marks the lot sold. Fails with domain.ErrNotFound,
	// domain.ErrLotNotOpen, domain.ErrSelfPurchase or, on integrity breach,
	// domain.ErrReservationViolation; no partial transfer survives a failure.
	PurchaseLot(ctx context.Context, lotID string, purchaserID int64) (*domain.Lot, error)

	// CancelLot releases the lot's reservations and marks it cancelled
	// without touching the ledger. Fails with domain.ErrNotFound,
	// domain.ErrNotSeller or domain.ErrLotNotOpen.
	CancelLot(ctx context.Context, lotID string, requesterID int64) error
}
