// Package shopping turns the ingredient needs of a menu into a shopping list.
package shopping

import (
	"sort"

	"menu-planner/internal/pantry"
)

// Need accumulates required quantities per ingredient across a menu.
type Need map[string]float64

// Add merges the requirement of one meal.
func (n Need) Add(required map[string]float64) {
	for id, q := range required {
		n[id] += q
	}
}

// Line is one row of a shopping list.
type Line struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Required     float64 `json:"required"`
	Initial      float64 `json:"initial"`
	Remaining    float64 `json:"remaining"`
	ToBuy        float64 `json:"to_buy"`
}

// StockReader exposes the pantry figures a shopping list needs.
type StockReader interface {
	Ingredient(id string) (pantry.Ingredient, bool)
	Stock(id string) (float64, bool)
}

// Build returns one line per needed ingredient, sorted by name. The quantity to
// buy compares the cumulative need with the initial stock, regardless of how
// much simulated stock was consumed.
func Build(need Need, stock StockReader) []Line {
	lines := make([]Line, 0, len(need))
	for id, required := range need {
		line := Line{IngredientID: id, Name: id, Required: required}
		if ing, ok := stock.Ingredient(id); ok {
			line.Name = ing.Name
			line.Unit = ing.Unit
			line.Initial = max(ing.Quantity, 0)
		}
		if remaining, ok := stock.Stock(id); ok {
			line.Remaining = remaining
		}
		line.ToBuy = max(0, required-line.Initial)
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].IngredientID < lines[j].IngredientID
	})
	return lines
}

// Missing keeps the lines that require a purchase.
func Missing(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if l.ToBuy > 0 {
			out = append(out, l)
		}
	}
	return out
}
