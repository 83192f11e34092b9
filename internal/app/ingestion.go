package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"menu-planner/internal/catalog"
	"menu-planner/internal/history"
	"menu-planner/internal/pantry"
	"menu-planner/internal/recipe"
)

// SeedSummary counts what a catalog import wrote.
type SeedSummary struct {
	Recipes     int
	Ingredients int
	Links       int
	History     int
	Skipped     int
	Diagnostics int
}

// SeedCatalog writes a validated catalog through the repositories. Recipes
// and ingredients are upserted, the links of every imported recipe are
// replaced and history entries already in the log are skipped.
func SeedCatalog(
	ctx context.Context,
	c *catalog.Catalog,
	recipeRepo *recipe.Repository,
	pantryRepo *pantry.Repository,
	historyRepo *history.Repository,
	logger *zap.Logger,
) (SeedSummary, error) {
	summary := SeedSummary{Diagnostics: c.Diagnostics}

	for _, rec := range c.Recipes {
		if err := recipeRepo.Save(ctx, rec); err != nil {
			return summary, fmt.Errorf("failed to save recipe: %w", err)
		}
		summary.Recipes++
	}

	for _, ing := range c.Ingredients {
		if err := pantryRepo.SaveIngredient(ctx, ing); err != nil {
			return summary, fmt.Errorf("failed to save ingredient: %w", err)
		}
		summary.Ingredients++
	}

	cleared := make(map[string]struct{})
	for _, l := range c.Links {
		if _, ok := cleared[l.RecipeID]; !ok {
			if err := pantryRepo.DeleteLinks(ctx, l.RecipeID); err != nil {
				return summary, fmt.Errorf("failed to replace links: %w", err)
			}
			cleared[l.RecipeID] = struct{}{}
		}
		if err := pantryRepo.SaveLink(ctx, l.RecipeID, l.IngredientID, string(l.QuantityPerPerson), l.Formula); err != nil {
			return summary, fmt.Errorf("failed to save link: %w", err)
		}
		summary.Links++
	}

	for _, h := range c.History {
		found, err := historyRepo.Has(ctx, h.Date, h.RecipeID)
		if err != nil {
			return summary, err
		}
		if found {
			summary.Skipped++
			continue
		}
		if err := historyRepo.Append(ctx, h.Date, h.RecipeID, h.Name, ""); err != nil {
			return summary, fmt.Errorf("failed to save history: %w", err)
		}
		summary.History++
	}

	logger.Info("Catalog imported",
		zap.Int("recipes", summary.Recipes),
		zap.Int("ingredients", summary.Ingredients),
		zap.Int("links", summary.Links),
		zap.Int("history", summary.History),
		zap.Int("skipped", summary.Skipped),
		zap.Int("diagnostics", summary.Diagnostics))
	return summary, nil
}

// Seed imports the catalog file at path.
func (a *App) Seed(ctx context.Context, path string) (SeedSummary, error) {
	c, err := catalog.Load(path, a.logger)
	if err != nil {
		return SeedSummary{}, err
	}
	summary, err := SeedCatalog(ctx, c, a.recipeRepo, a.pantryRepo, a.historyRepo, a.logger)
	if err != nil {
		return summary, err
	}
	fmt.Fprintf(a.out, "Imported %d recipes, %d ingredients, %d links and %d history entries (%d already known, %d unreadable values).\n",
		summary.Recipes, summary.Ingredients, summary.Links, summary.History, summary.Skipped, summary.Diagnostics)
	return summary, nil
}
