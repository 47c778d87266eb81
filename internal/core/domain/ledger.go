package domain

// ComponentOwnership is one row of the component ledger, keyed by
// (customer, component). A row with quantity 0 reads the same as a missing
// row.
type ComponentOwnership struct {
	CustomerID  int64
	ComponentID int64
	Quantity    int
}

// VoucherOwnership is one row of the discount ledger, keyed by
// (customer, rarity). Rows are materialized lazily with quantity 0.
type VoucherOwnership struct {
	CustomerID int64
	Rarity     Rarity
	Quantity   int
}

// ApplyDelta is the quantity arithmetic both ledgers share: it returns
// quantity+delta and rejects any result below zero.
func ApplyDelta(quantity, delta int) (int, error) {
	next := quantity + delta
	if next < 0 {
		return 0, ErrInsufficientQuantity
	}
	return next, nil
}
