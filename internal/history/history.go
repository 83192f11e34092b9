// Package history answers repetition questions about previously served meals.
package history

import (
	"time"

	"menu-planner/internal/pantry"
)

// Entry is one previously served meal.
type Entry struct {
	Date     time.Time `json:"date"`
	RecipeID string    `json:"recipe_id"`
}

// Analyzer indexes the meal history. It is read-only once built.
type Analyzer struct {
	served       map[string][]time.Time
	byIngredient map[string][]string
}

// NewAnalyzer indexes entries by recipe and links by ingredient. Dates are
// truncated to the calendar day; entries without a date or recipe are dropped.
func NewAnalyzer(entries []Entry, links []pantry.Link) *Analyzer {
	a := &Analyzer{
		served:       make(map[string][]time.Time),
		byIngredient: make(map[string][]string),
	}
	for _, e := range entries {
		if e.Date.IsZero() || e.RecipeID == "" {
			continue
		}
		a.served[e.RecipeID] = append(a.served[e.RecipeID], Day(e.Date))
	}

	seen := make(map[[2]string]struct{})
	for _, l := range links {
		key := [2]string{l.IngredientID, l.RecipeID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		a.byIngredient[l.IngredientID] = append(a.byIngredient[l.IngredientID], l.RecipeID)
	}
	return a
}

// Frequency returns how many times a recipe has been served.
func (a *Analyzer) Frequency(recipeID string) int {
	return len(a.served[recipeID])
}

// IsRecentRecipe reports whether recipeID was served in the windowDays days
// ending on asOf, that is strictly after asOf-windowDays and up to asOf.
func (a *Analyzer) IsRecentRecipe(recipeID string, asOf time.Time, windowDays int) bool {
	end := Day(asOf)
	start := end.AddDate(0, 0, -windowDays)
	for _, d := range a.served[recipeID] {
		if d.After(start) && !d.After(end) {
			return true
		}
	}
	return false
}

// IngredientUsedWithinInterval reports whether any recipe containing the
// ingredient was served on or after asOf-intervalDays. A non-positive interval
// disables the check.
func (a *Analyzer) IngredientUsedWithinInterval(ingredientID string, asOf time.Time, intervalDays int) bool {
	if intervalDays <= 0 {
		return false
	}
	start := Day(asOf).AddDate(0, 0, -intervalDays)
	for _, recipeID := range a.byIngredient[ingredientID] {
		for _, d := range a.served[recipeID] {
			if !d.Before(start) {
				return true
			}
		}
	}
	return false
}

// SameCalendarWeekPriorYears returns the recipes served during the same ISO
// week number as asOf in any earlier ISO year.
func (a *Analyzer) SameCalendarWeekPriorYears(asOf time.Time) map[string]struct{} {
	year, week := asOf.ISOWeek()
	out := make(map[string]struct{})
	for recipeID, dates := range a.served {
		for _, d := range dates {
			y, w := d.ISOWeek()
			if w == week && y < year {
				out[recipeID] = struct{}{}
				break
			}
		}
	}
	return out
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
