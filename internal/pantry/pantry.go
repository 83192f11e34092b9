// Package pantry owns the simulated stock of ingredients used while a menu is
// generated. It scores how well the stock covers a recipe, depletes the stock
// as meals are assigned and flags surplus ingredients for anti-waste picks.
package pantry

import (
	"maps"
	"strings"
)

// StockFormula is the stock-category formula value a recipe/ingredient link
// must carry to count towards stock. Other links are decorative.
const StockFormula = "Stock"

const (
	// availableRatio is the per-ingredient coverage from which an ingredient counts as available.
	availableRatio = 0.3

	massSurplus  = 100.0
	countSurplus = 1.0
)

// Ingredient is a pantry item as loaded at the start of a generation.
type Ingredient struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	IntervalDays int     `json:"interval_days"`
	Quantity     float64 `json:"quantity"`
}

// Link states how much of an ingredient one person eats in a recipe.
// A nil QuantityPerPerson means the amount is missing or was not numeric.
type Link struct {
	RecipeID          string   `json:"recipe_id"`
	IngredientID      string   `json:"ingredient_id"`
	QuantityPerPerson *float64 `json:"quantity_per_person,omitempty"`
}

// Availability summarises how well the simulated stock covers a recipe.
type Availability struct {
	MeanRatio        float64
	PercentAvailable float64
	Shortages        map[string]float64
}

// Pantry is the availability model. It is not safe for concurrent use; each
// generation run owns its own Pantry.
type Pantry struct {
	initial   map[string]Ingredient
	stock     map[string]float64
	links     map[string][]Link
	highStock map[string]struct{}
}

// New builds a pantry whose simulated stock starts equal to the initial quantities.
func New(ingredients []Ingredient, links []Link) *Pantry {
	p := &Pantry{
		initial: make(map[string]Ingredient, len(ingredients)),
		links:   make(map[string][]Link),
	}
	for _, ing := range ingredients {
		p.initial[ing.ID] = ing
	}
	for _, l := range links {
		p.links[l.RecipeID] = append(p.links[l.RecipeID], l)
	}
	p.Reset()
	return p
}

// Reset replaces the simulated stock with a fresh copy of the initial snapshot.
func (p *Pantry) Reset() {
	p.stock = make(map[string]float64, len(p.initial))
	for id, ing := range p.initial {
		if usableAmount(ing.Quantity) {
			p.stock[id] = ing.Quantity
		} else {
			p.stock[id] = 0
		}
	}
	p.refreshHighStock()
}

// Clone returns an independent pantry sharing the same initial snapshot and
// carrying a copy of the current simulated stock.
func (p *Pantry) Clone() *Pantry {
	c := &Pantry{
		initial:   p.initial,
		links:     p.links,
		stock:     maps.Clone(p.stock),
		highStock: maps.Clone(p.highStock),
	}
	return c
}

// Ingredient returns the initial record of an ingredient.
func (p *Pantry) Ingredient(id string) (Ingredient, bool) {
	ing, ok := p.initial[id]
	return ing, ok
}

// Stock returns the simulated quantity left for an ingredient.
func (p *Pantry) Stock(id string) (float64, bool) {
	q, ok := p.stock[id]
	return q, ok
}

// Links returns the stock links of a recipe.
func (p *Pantry) Links(recipeID string) []Link {
	return p.links[recipeID]
}

// Required returns the quantity of each ingredient needed to cook recipeID for
// party people. Links without a usable per-person amount are skipped.
func (p *Pantry) Required(recipeID string, party int) map[string]float64 {
	need := make(map[string]float64)
	for _, l := range p.links[recipeID] {
		if l.QuantityPerPerson == nil || !usableAmount(*l.QuantityPerPerson) {
			continue
		}
		need[l.IngredientID] += *l.QuantityPerPerson * float64(party)
	}
	return need
}

// Score computes the availability of recipeID for party people against the
// simulated stock. A recipe without required ingredients scores zero.
func (p *Pantry) Score(recipeID string, party int) Availability {
	need := p.Required(recipeID, party)
	result := Availability{Shortages: make(map[string]float64)}
	if len(need) == 0 {
		return result
	}

	var sum float64
	available := 0
	for id, required := range need {
		stock, known := p.stock[id]

		var ratio float64
		if required > 0 && known {
			ratio = min(1, stock/required)
		}
		if ratio >= availableRatio {
			available++
		}
		sum += ratio

		if stock < required {
			if short := required - stock; short > 0 {
				result.Shortages[id] = short
			}
		}
	}

	result.MeanRatio = sum / float64(len(need))
	result.PercentAvailable = float64(available) / float64(len(need)) * 100
	return result
}

// Decrement removes the ingredients of recipeID for party people from the
// simulated stock. Stock never goes below zero.
func (p *Pantry) Decrement(recipeID string, party int) {
	for id, required := range p.Required(recipeID, party) {
		current := p.stock[id]
		if current <= 0 {
			continue
		}
		p.stock[id] = current - min(current, required)
	}
	p.refreshHighStock()
}

// HighStock returns the ingredients currently in surplus. The planner only
// asks TouchesHighStock; this is the read side of the same set for callers
// inspecting the pantry.
func (p *Pantry) HighStock() map[string]struct{} {
	return maps.Clone(p.highStock)
}

// TouchesHighStock reports whether recipeID uses at least one surplus ingredient.
func (p *Pantry) TouchesHighStock(recipeID string) bool {
	for _, l := range p.links[recipeID] {
		if _, ok := p.highStock[l.IngredientID]; ok {
			return true
		}
	}
	return false
}

func (p *Pantry) refreshHighStock() {
	p.highStock = make(map[string]struct{})
	for id, q := range p.stock {
		threshold, ok := surplusThreshold(p.initial[id].Unit)
		if ok && q >= threshold {
			p.highStock[id] = struct{}{}
		}
	}
}

// surplusThreshold returns the quantity from which stock counts as surplus
// for a unit. Units outside the known families never count as surplus.
func surplusThreshold(unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(unit), "."))) {
	case "g", "gr", "gramme", "grammes", "ml", "millilitre", "millilitres", "cl", "centilitre", "centilitres":
		return massSurplus, true
	case "pièce", "pièces", "piece", "pieces", "pc", "pcs", "tranche", "tranches", "unité", "unités", "u":
		return countSurplus, true
	}
	return 0, false
}
