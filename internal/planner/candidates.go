package planner

import (
	"sort"
	"time"

	"menu-planner/internal/pantry"
	"menu-planner/internal/recipe"
)

const (
	antiWasteMinScore = 0.5
	antiWasteLimit    = 5
	candidateLimit    = 10
)

// candidate is a recipe that survived filtering for one slot.
type candidate struct {
	recipe       recipe.Recipe
	availability pantry.Availability
	frequency    int
}

// query is what the filters see of a slot once a relaxation has been applied.
type query struct {
	at    time.Time
	codes []string
	party int
	Constraints
}

func newQuery(s Slot, c Constraints) query {
	return query{at: s.At, codes: s.Codes(), party: s.PartySize(), Constraints: c}
}

// filters run in order and stop at the first one rejecting a recipe.
var filters = []struct {
	name string
	keep func(*run, query, recipe.Recipe) bool
}{
	{"excluded", func(r *run, _ query, rec recipe.Recipe) bool {
		_, excluded := r.exclude[rec.ID]
		return !excluded
	}},
	{"transportable", func(_ *run, q query, rec recipe.Recipe) bool {
		return !q.Transportable || rec.Transportable
	}},
	{"time", func(r *run, q query, rec recipe.Recipe) bool {
		ceiling, limited := r.g.params.timeCeiling(q.Time)
		if !limited {
			return true
		}
		return rec.TotalMinutes != nil && *rec.TotalMinutes <= ceiling
	}},
	{"nutrition", func(r *run, q query, rec recipe.Recipe) bool {
		if q.Nutrition != NutritionBalanced {
			return true
		}
		return rec.Calories != nil && *rec.Calories <= r.g.params.BalancedMaxCalories
	}},
	{"used", func(r *run, _ query, rec recipe.Recipe) bool {
		_, used := r.used[rec.ID]
		return !used
	}},
	{"disliked", func(_ *run, q query, rec recipe.Recipe) bool {
		return !rec.DislikedByAny(q.codes)
	}},
	{"recent", func(r *run, q query, rec recipe.Recipe) bool {
		return !r.g.history.IsRecentRecipe(rec.ID, q.at, r.g.params.AntiRepetitionDays)
	}},
	{"interval", func(r *run, q query, rec recipe.Recipe) bool {
		for _, l := range r.pantry.Links(rec.ID) {
			ing, ok := r.pantry.Ingredient(l.IngredientID)
			if !ok || ing.IntervalDays <= 0 {
				continue
			}
			if r.g.history.IngredientUsedWithinInterval(ing.ID, q.at, ing.IntervalDays) {
				return false
			}
		}
		return true
	}},
}

func (r *run) eligible(q query, rec recipe.Recipe) bool {
	for _, f := range filters {
		if !f.keep(r, q, rec) {
			return false
		}
	}
	return true
}

// candidates returns the ranked recipes a slot may use. When the best
// anti-waste candidate covers at least half of its needs, only anti-waste
// candidates are offered.
func (r *run) candidates(q query) []candidate {
	var all, antiWaste []candidate
	for _, rec := range r.g.catalog.All() {
		if !r.eligible(q, rec) {
			continue
		}
		c := candidate{
			recipe:       rec,
			availability: r.pantry.Score(rec.ID, q.party),
			frequency:    r.g.history.Frequency(rec.ID),
		}
		all = append(all, c)
		if r.pantry.TouchesHighStock(rec.ID) {
			antiWaste = append(antiWaste, c)
		}
	}

	var best float64
	for _, c := range antiWaste {
		best = max(best, c.availability.MeanRatio)
	}

	if len(antiWaste) > 0 && best >= antiWasteMinScore {
		r.rank(antiWaste)
		return antiWaste[:min(len(antiWaste), antiWasteLimit)]
	}
	r.rank(all)
	return all[:min(len(all), candidateLimit)]
}

// rank orders candidates by ascending history frequency in alternative runs,
// by descending availability otherwise.
func (r *run) rank(cs []candidate) {
	if r.mode == Alternative {
		sort.SliceStable(cs, func(i, j int) bool { return cs[i].frequency < cs[j].frequency })
		return
	}
	byAvailability(cs)
}

func byAvailability(cs []candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].availability.MeanRatio > cs[j].availability.MeanRatio
	})
}
