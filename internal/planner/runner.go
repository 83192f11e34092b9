// Package planner assigns a recipe to every slot of a weekly meal plan.
//
// Slots are resolved greedily in date order. Each choice depletes a simulated
// pantry, so earlier slots shape the candidates of later ones. A generation
// produces two menus: a realistic one that follows the pantry stock, and an
// alternative one that ignores stock and avoids every recipe of the first.
package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"menu-planner/internal/history"
	"menu-planner/internal/pantry"
	"menu-planner/internal/recipe"
	"menu-planner/internal/shopping"
)

// Mode selects how a run treats the pantry.
type Mode string

const (
	// Realistic runs rank by stock coverage and deplete the pantry.
	Realistic Mode = "realistic"
	// Alternative runs rank by how rarely a recipe was served and leave the pantry untouched.
	Alternative Mode = "alternative"
)

// Stats counts slot outcomes of a run.
type Stats struct {
	Slots      int `json:"slots"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
	Relaxed    int `json:"relaxed"`
	Leftovers  int `json:"leftovers"`
}

// Result is the menu and shopping list produced by one run.
type Result struct {
	Mode     Mode            `json:"mode"`
	Meals    []Meal          `json:"meals"`
	Shopping []shopping.Line `json:"shopping"`
	Stats    Stats           `json:"stats"`
	Elapsed  time.Duration   `json:"elapsed"`
}

// RecipeIDs returns the set of recipes placed by the run.
func (r Result) RecipeIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(r.Meals))
	for _, m := range r.Meals {
		if m.Resolved() {
			ids[m.RecipeID] = struct{}{}
		}
	}
	return ids
}

// Generator holds the inputs shared by every run. It never mutates them, so
// one Generator may serve several generations.
type Generator struct {
	catalog *recipe.Catalog
	base    *pantry.Pantry
	history *history.Analyzer
	params  Params
	logger  *zap.Logger
}

// NewGenerator creates a generator over an eligible recipe catalog and the
// initial pantry snapshot.
func NewGenerator(catalog *recipe.Catalog, ingredients []pantry.Ingredient, links []pantry.Link, analyzer *history.Analyzer, params Params, logger *zap.Logger) *Generator {
	return &Generator{
		catalog: catalog,
		base:    pantry.New(ingredients, links),
		history: analyzer,
		params:  params,
		logger:  logger,
	}
}

// NewPantry returns a fresh pantry holding the initial stock.
func (g *Generator) NewPantry() *pantry.Pantry {
	return g.base.Clone()
}

// Generate produces the realistic menu, then the alternative menu on a reset
// pantry excluding every recipe the realistic menu placed.
func (g *Generator) Generate(slots []Slot) (realistic, alternative Result) {
	p := g.NewPantry()
	realistic = g.Run(slots, p, Realistic, nil)

	p.Reset()
	alternative = g.Run(slots, p, Alternative, realistic.RecipeIDs())
	return realistic, alternative
}

// run is the state of one pass over the plan. It is discarded afterwards.
type run struct {
	g              *Generator
	pantry         *pantry.Pantry
	mode           Mode
	exclude        map[string]struct{}
	used           map[string]struct{}
	transportables []placedDish
	lastNames      []string
	need           shopping.Need
}

func (g *Generator) newRun(p *pantry.Pantry, mode Mode, exclude map[string]struct{}) *run {
	return &run{
		g:       g,
		pantry:  p,
		mode:    mode,
		exclude: exclude,
		used:    make(map[string]struct{}),
		need:    shopping.Need{},
	}
}

// Run resolves slots in date order against p. Realistic runs decrement p.
func (g *Generator) Run(slots []Slot, p *pantry.Pantry, mode Mode, exclude map[string]struct{}) Result {
	start := time.Now()
	r := g.newRun(p, mode, exclude)

	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At.Before(ordered[j].At) })

	result := Result{Mode: mode, Meals: make([]Meal, 0, len(ordered))}
	for _, s := range ordered {
		var meal Meal
		if s.IsLeftover() {
			meal = r.placeLeftover(s)
		} else {
			meal = r.place(s)
		}
		result.Meals = append(result.Meals, meal)
		result.Stats.add(meal)

		g.logger.Debug("Slot resolved",
			zap.String("mode", string(mode)),
			zap.Time("at", s.At),
			zap.String("recipe_id", meal.RecipeID),
			zap.String("name", meal.Name),
			zap.Strings("remarks", meal.Remarks))
	}
	result.Shopping = shopping.Build(r.need, p)
	result.Elapsed = time.Since(start)

	g.logger.Info("Menu generated",
		zap.String("mode", string(mode)),
		zap.Int("slots", result.Stats.Slots),
		zap.Int("resolved", result.Stats.Resolved),
		zap.Int("unresolved", result.Stats.Unresolved),
		zap.Int("relaxed", result.Stats.Relaxed),
		zap.Int("shopping_lines", len(shopping.Missing(result.Shopping))),
		zap.Duration("elapsed", result.Elapsed))
	return result
}

func (s *Stats) add(m Meal) {
	s.Slots++
	if m.Resolved() {
		s.Resolved++
	} else {
		s.Unresolved++
	}
	if m.Relaxed {
		s.Relaxed++
	}
	if m.Leftover && m.Resolved() {
		s.Leftovers++
	}
}

func (r *run) place(s Slot) Meal {
	meal := Meal{At: s.At, Participants: s.Participants}
	res, ok := r.resolve(s)
	if res.remark != "" {
		meal.Remarks = append(meal.Remarks, res.remark)
	}
	if !ok {
		meal.Name = UnresolvedName
		return meal
	}

	rec := res.candidate.recipe
	meal.RecipeID = rec.ID
	meal.Name = rec.Name
	meal.PrepMinutes = rec.TotalMinutes
	meal.Relaxed = res.relaxed
	meal.Availability = r.annotate(res.candidate.availability)

	party := s.PartySize()
	r.commit(rec.ID, rec.Name, party)
	if rec.Transportable {
		r.transportables = append(r.transportables, placedDish{
			at:       s.At,
			recipeID: rec.ID,
			name:     rec.Name,
			party:    party,
		})
	}
	return meal
}

// commit applies a successful pick to the run state.
func (r *run) commit(recipeID, name string, party int) {
	r.need.Add(r.pantry.Required(recipeID, party))
	if r.mode == Realistic {
		r.pantry.Decrement(recipeID, party)
	}
	r.used[recipeID] = struct{}{}
	r.rememberName(name)
}

// annotate renders the stock coverage of a pick, e.g.
// "67% in stock, missing Crème fraîche 20 cl".
func (r *run) annotate(a pantry.Availability) string {
	text := fmt.Sprintf("%.0f%% in stock", a.PercentAvailable)
	if len(a.Shortages) == 0 {
		return text
	}

	parts := make([]string, 0, len(a.Shortages))
	for id, short := range a.Shortages {
		name, unit := id, ""
		if ing, ok := r.pantry.Ingredient(id); ok {
			name, unit = ing.Name, ing.Unit
		}
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%s %s %s", name, pantry.FormatQuantity(&short), unit)))
	}
	sort.Strings(parts)
	return text + ", missing " + strings.Join(parts, ", ")
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	d := history.Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
