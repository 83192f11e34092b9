package pantry

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// Repository loads and stores ingredients and recipe links in SQLite.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB, logger *zap.Logger) *Repository {
	return &Repository{db: d, logger: logger}
}

// SaveIngredient inserts or updates an ingredient.
func (r *Repository) SaveIngredient(ctx context.Context, ing Ingredient) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingredients (id, name, category, unit, interval_days, quantity)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			unit = excluded.unit,
			interval_days = excluded.interval_days,
			quantity = excluded.quantity`,
		ing.ID, ing.Name, ing.Category, ing.Unit, ing.IntervalDays, ing.Quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to save ingredient %s: %w", ing.ID, err)
	}
	return nil
}

// ListIngredients returns every ingredient with its current stock.
func (r *Repository) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, unit, interval_days, quantity
		FROM ingredients ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var out []Ingredient
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Category, &ing.Unit, &ing.IntervalDays, &ing.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

// SaveLink stores a raw link row. rawQuantity is kept verbatim so that
// unparsable amounts surface when links are loaded.
func (r *Repository) SaveLink(ctx context.Context, recipeID, ingredientID, rawQuantity, formula string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity_per_person, formula)
		VALUES (?, ?, ?, ?)`,
		recipeID, ingredientID, rawQuantity, formula,
	)
	if err != nil {
		return fmt.Errorf("failed to save link %s/%s: %w", recipeID, ingredientID, err)
	}
	return nil
}

// DeleteLinks removes every link of a recipe, before it is re-imported.
func (r *Repository) DeleteLinks(ctx context.Context, recipeID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("failed to delete links of %s: %w", recipeID, err)
	}
	return nil
}

// ListStockLinks returns the links flagged with StockFormula. The second
// return value counts rows whose quantity could not be parsed; such links are
// kept with a nil quantity.
func (r *Repository) ListStockLinks(ctx context.Context) ([]Link, int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT recipe_id, ingredient_id, quantity_per_person
		FROM recipe_ingredients WHERE formula = ? ORDER BY id`, StockFormula)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipe links: %w", err)
	}
	defer rows.Close()

	var (
		links       []Link
		diagnostics int
	)
	for rows.Next() {
		var (
			l   Link
			raw sql.NullString
		)
		if err := rows.Scan(&l.RecipeID, &l.IngredientID, &raw); err != nil {
			return nil, 0, fmt.Errorf("failed to scan recipe link: %w", err)
		}
		q, err := ParseQuantity(raw.String)
		if err != nil {
			diagnostics++
			r.logger.Warn("ignoring per-person quantity",
				zap.String("recipe_id", l.RecipeID),
				zap.String("ingredient_id", l.IngredientID),
				zap.Error(err))
		}
		l.QuantityPerPerson = q
		links = append(links, l)
	}
	return links, diagnostics, rows.Err()
}

// FormatQuantity renders a link amount for storage.
func FormatQuantity(q *float64) string {
	if q == nil {
		return ""
	}
	return strconv.FormatFloat(*q, 'f', -1, 64)
}
