package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Xelaphir/shawa/internal/core/domain"
)

// Catalog reads. The tables are loaded by seeding and immutable at runtime,
// so plain reads outside any transaction are enough.

func (m *MySQLAdapter) ComponentByID(ctx context.Context, componentID int64) (*domain.Component, error) {
	var comp domain.Component
	err := m.db.QueryRowContext(ctx, `
		SELECT id, type_id, rarity, is_common, cost, min_qty, max_qty, qty_step, name
		FROM components WHERE id = ?`, componentID,
	).Scan(&comp.ID, &comp.TypeID, &comp.Rarity, &comp.IsCommon, &comp.Cost,
		&comp.MinQty, &comp.MaxQty, &comp.QtyStep, &comp.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query component: %w", err)
	}
	return &comp, nil
}

func (m *MySQLAdapter) DrawableComponents(ctx context.Context, rarity domain.Rarity) ([]domain.Component, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, type_id, rarity, is_common, cost, min_qty, max_qty, qty_step, name
		FROM components WHERE rarity = ? AND is_common = FALSE`, rarity)
	if err != nil {
		return nil, fmt.Errorf("query rarity pool: %w", err)
	}
	defer rows.Close()

	var out []domain.Component
	for rows.Next() {
		var comp domain.Component
		if err := rows.Scan(&comp.ID, &comp.TypeID, &comp.Rarity, &comp.IsCommon,
			&comp.Cost, &comp.MinQty, &comp.MaxQty, &comp.QtyStep, &comp.Name); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		out = append(out, comp)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) RecipeByID(ctx context.Context, recipeID int64) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := m.db.QueryRowContext(ctx, `
		SELECT id, author_id, name, price, is_private, rating
		FROM recipes WHERE id = ?`, recipeID,
	).Scan(&recipe.ID, &recipe.AuthorID, &recipe.Name, &recipe.Price,
		&recipe.IsPrivate, &recipe.Rating)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query recipe: %w", err)
	}
	return &recipe, nil
}

func (m *MySQLAdapter) DiscountPercent(ctx context.Context, rarity domain.Rarity) (int, error) {
	var percent int
	err := m.db.QueryRowContext(ctx, `
		SELECT percents FROM discounts WHERE rarity = ?`, rarity,
	).Scan(&percent)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrUnknownRarity
	}
	if err != nil {
		return 0, fmt.Errorf("query discount: %w", err)
	}
	return percent, nil
}

func (m *MySQLAdapter) DiscountTiers(ctx context.Context) ([]domain.DiscountTier, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT rarity, percents FROM discounts`)
	if err != nil {
		return nil, fmt.Errorf("query discounts: %w", err)
	}
	defer rows.Close()

	var out []domain.DiscountTier
	for rows.Next() {
		var tier domain.DiscountTier
		if err := rows.Scan(&tier.Rarity, &tier.Percent); err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		out = append(out, tier)
	}
	return out, rows.Err()
}
