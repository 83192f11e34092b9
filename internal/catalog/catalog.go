// Package catalog reads the JSON export of recipes, pantry and meal history
// used to seed the planner database.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"

	"menu-planner/internal/history"
	"menu-planner/internal/pantry"
	"menu-planner/internal/recipe"
)

// ErrInvalid is returned when a record lacks a field the planner cannot do without.
var ErrInvalid = errors.New("invalid catalog")

// Value is a scalar typed either as a JSON number, boolean or string, such as
// 650, "20,5" or "oui". The raw text is kept and parsed later.
type Value string

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(strings.TrimSpace(s))
	default:
		*v = Value(b)
	}
	return nil
}

// RecipeRecord is a recipe as exported.
type RecipeRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Seasons       []string `json:"seasons"`
	Calories      Value    `json:"calories"`
	Proteins      Value    `json:"proteins"`
	TotalMinutes  Value    `json:"total_minutes"`
	DishTypes     []string `json:"dish_types"`
	Transportable Value    `json:"transportable"`
	DislikedBy    []string `json:"disliked_by"`
}

// IngredientRecord is a pantry item as exported.
type IngredientRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Unit         string `json:"unit"`
	IntervalDays Value  `json:"interval_days"`
	Quantity     Value  `json:"quantity"`
}

// LinkRecord ties an ingredient to a recipe. The quantity is stored verbatim.
type LinkRecord struct {
	RecipeID          string `json:"recipe_id"`
	IngredientID      string `json:"ingredient_id"`
	QuantityPerPerson Value  `json:"quantity_per_person"`
	Formula           string `json:"formula"`
}

// HistoryRecord is a served meal. The date is stored verbatim.
type HistoryRecord struct {
	Date     string `json:"date"`
	RecipeID string `json:"recipe_id"`
	Name     string `json:"name"`
}

type file struct {
	Recipes     []RecipeRecord     `json:"recipes"`
	Ingredients []IngredientRecord `json:"ingredients"`
	Links       []LinkRecord       `json:"links"`
	History     []HistoryRecord    `json:"history"`
}

// Catalog is a validated export ready to be written to the database.
type Catalog struct {
	Recipes     []recipe.Recipe
	Ingredients []pantry.Ingredient
	Links       []LinkRecord
	History     []HistoryRecord
	Diagnostics int
}

// Load reads and validates the catalog at path.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, logger)
}

// Parse decodes and validates a catalog. Missing identifiers are errors;
// unreadable values are logged, counted and treated as absent.
func Parse(r io.Reader, logger *zap.Logger) (*Catalog, error) {
	var raw file
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := raw.validate(); err != nil {
		return nil, err
	}

	p := &parser{logger: logger}
	c := &Catalog{Links: raw.Links, History: raw.History}
	for _, rec := range raw.Recipes {
		c.Recipes = append(c.Recipes, p.recipe(rec))
	}
	for _, ing := range raw.Ingredients {
		c.Ingredients = append(c.Ingredients, p.ingredient(ing))
	}
	for _, h := range raw.History {
		if _, err := history.ParseDate(h.Date); err != nil {
			p.warn("history", h.RecipeID, "date", Value(h.Date), err)
		}
	}
	c.Diagnostics = p.diagnostics
	return c, nil
}

func (f file) validate() error {
	recipes := make(map[string]struct{}, len(f.Recipes))
	for i, r := range f.Recipes {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("%w: recipe #%d has no id", ErrInvalid, i+1)
		}
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("%w: recipe %s has no name", ErrInvalid, r.ID)
		}
		if _, dup := recipes[r.ID]; dup {
			return fmt.Errorf("%w: duplicate recipe id %s", ErrInvalid, r.ID)
		}
		recipes[r.ID] = struct{}{}
	}
	for i, ing := range f.Ingredients {
		if strings.TrimSpace(ing.ID) == "" {
			return fmt.Errorf("%w: ingredient #%d has no id", ErrInvalid, i+1)
		}
	}
	for i, l := range f.Links {
		if l.RecipeID == "" || l.IngredientID == "" {
			return fmt.Errorf("%w: link #%d needs a recipe_id and an ingredient_id", ErrInvalid, i+1)
		}
	}
	for i, h := range f.History {
		if h.RecipeID == "" {
			return fmt.Errorf("%w: history entry #%d has no recipe_id", ErrInvalid, i+1)
		}
	}
	return nil
}

type parser struct {
	logger      *zap.Logger
	diagnostics int
}

func (p *parser) warn(kind, id, field string, value Value, err error) {
	p.diagnostics++
	p.logger.Warn("Unreadable catalog value",
		zap.String("record", kind),
		zap.String("id", id),
		zap.String("field", field),
		zap.String("value", string(value)),
		zap.Error(err))
}

func (p *parser) number(kind, id, field string, v Value) *float64 {
	q, err := pantry.ParseQuantity(string(v))
	if err != nil {
		p.warn(kind, id, field, v, err)
		return nil
	}
	return q
}

func (p *parser) integer(kind, id, field string, v Value) *int {
	q := p.number(kind, id, field, v)
	if q == nil {
		return nil
	}
	n := int(math.Round(*q))
	return &n
}

func (p *parser) flag(kind, id, field string, v Value) bool {
	switch strings.ToLower(string(v)) {
	case "", "false", "0", "non", "no":
		return false
	case "true", "1", "oui", "yes", "x":
		return true
	}
	p.warn(kind, id, field, v, errors.New("not a yes/no value"))
	return false
}

func (p *parser) recipe(r RecipeRecord) recipe.Recipe {
	return recipe.Recipe{
		ID:            r.ID,
		Name:          strings.TrimSpace(r.Name),
		Seasons:       r.Seasons,
		Calories:      p.number("recipe", r.ID, "calories", r.Calories),
		Proteins:      p.number("recipe", r.ID, "proteins", r.Proteins),
		TotalMinutes:  p.integer("recipe", r.ID, "total_minutes", r.TotalMinutes),
		DishTypes:     r.DishTypes,
		Transportable: p.flag("recipe", r.ID, "transportable", r.Transportable),
		DislikedBy:    r.DislikedBy,
	}
}

func (p *parser) ingredient(r IngredientRecord) pantry.Ingredient {
	ing := pantry.Ingredient{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Unit:     r.Unit,
	}
	if n := p.integer("ingredient", r.ID, "interval_days", r.IntervalDays); n != nil {
		ing.IntervalDays = max(*n, 0)
	}
	if q := p.number("ingredient", r.ID, "quantity", r.Quantity); q != nil {
		ing.Quantity = max(*q, 0)
	}
	if ing.Name == "" {
		ing.Name = ing.ID
	}
	return ing
}
