package domain

// Catalog entities are loaded externally and immutable at runtime.

type ComponentType struct {
	ID   int64
	Name string
	// IsSelfCompatible allows two components of the same type in one recipe
	// (tomato + cucumber yes, lavash + pita no).
	IsSelfCompatible bool
}

type Component struct {
	ID     int64
	TypeID int64
	Rarity Rarity
	// IsCommon components are available to everybody and never come out of
	// the roulette.
	IsCommon bool
	Cost     int64
	MinQty   int
	MaxQty   int
	QtyStep  int
	Name     string
}

type Recipe struct {
	ID        int64
	AuthorID  int64
	Name      string
	Price     int64
	IsPrivate bool
	Rating    int
}

type RecipeItem struct {
	RecipeID    int64
	ComponentID int64
	NetQty      int
}

// DiscountTier is global: every component of the same rarity grants the
// same percentage, so rarity is the key.
type DiscountTier struct {
	Rarity  Rarity
	Percent int
}
