package domain

import "time"

type OrderItem struct {
	RecipeID int64
	Quantity int
}

// Order is a priced bundle of recipes. Price is the final price after any
// discount; DiscountRarity records the voucher tier consumed for it.
type Order struct {
	ID             string
	CustomerID     int64
	Price          int64
	DiscountRarity *Rarity
	Items          []OrderItem
	CreatedAt      time.Time
}
