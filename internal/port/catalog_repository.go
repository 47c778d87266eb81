package port

import (
	"context"

	"github.com/Xelaphir/shawa/internal/core/domain"
)

// CatalogRepository serves the read-only catalog: components, recipes and
// discount tiers are loaded externally and never change during a request.
type CatalogRepository interface {
	// ComponentByID returns the component, or nil when unknown.
	ComponentByID(ctx context.Context, componentID int64) (*domain.Component, error)

	// DrawableComponents returns the non-common components of a rarity; the
	// roulette picks uniformly among them.
	DrawableComponents(ctx context.Context, rarity domain.Rarity) ([]domain.Component, error)

	// RecipeByID returns the recipe, or nil when unknown.
	RecipeByID(ctx context.Context, recipeID int64) (*domain.Recipe, error)

	// DiscountPercent returns the percentage for a rarity, failing with
	// domain.ErrUnknownRarity if the tier is not in the catalog.
	DiscountPercent(ctx context.Context, rarity domain.Rarity) (int, error)

	// DiscountTiers returns every tier in the catalog.
	DiscountTiers(ctx context.Context) ([]domain.DiscountTier, error)
}
