package domain

import "time"

type LotStatus string

const (
	LotStatusOpen      LotStatus = "open"
	LotStatusSold      LotStatus = "sold"
	LotStatusCancelled LotStatus = "cancelled"
)

// LotItem reserves part of the seller's owned quantity. The reservation
// counts against availability but does not touch the ledger until the lot
// is sold.
type LotItem struct {
	ComponentID int64
	Quantity    int
}

type Lot struct {
	ID          string
	SellerID    int64
	PurchaserID *int64
	Price       int64
	Status      LotStatus
	Items       []LotItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TradeEvent is emitted once per sold lot. Consumers grant the seller one
// discount voucher per distinct rarity among the sold components.
type TradeEvent struct {
	LotID        string
	SellerID     int64
	PurchaserID  int64
	ComponentIDs []int64
}
