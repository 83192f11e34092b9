package recipe

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// Recipe is a dish the planner can assign to a slot. Recipes are immutable
// for the duration of a generation.
type Recipe struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Seasons       []string `json:"seasons,omitempty"`
	Calories      *float64 `json:"calories,omitempty"`
	Proteins      *float64 `json:"proteins,omitempty"`
	TotalMinutes  *int     `json:"total_minutes,omitempty"`
	DishTypes     []string `json:"dish_types,omitempty"`
	Transportable bool     `json:"transportable"`
	DislikedBy    []string `json:"disliked_by,omitempty"`
}

// DislikedByAny reports whether one of the participant codes dislikes the recipe.
// Codes are compared case-insensitively.
func (r Recipe) DislikedByAny(codes []string) bool {
	for _, code := range codes {
		for _, d := range r.DislikedBy {
			if strings.EqualFold(strings.TrimSpace(d), code) {
				return true
			}
		}
	}
	return false
}

// FirstWord returns the lower-cased leading word of name, used to avoid
// back-to-back dishes such as "Gratin de courgettes" and "Gratin dauphinois".
func FirstWord(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// Catalog is a read-only, ID-indexed set of recipes.
type Catalog struct {
	byID  map[string]Recipe
	order []string
}

// NewCatalog indexes recipes by ID. Later duplicates replace earlier ones.
// All() returns recipes sorted by name, then ID, so generation is deterministic.
func NewCatalog(recipes []Recipe) *Catalog {
	c := &Catalog{byID: make(map[string]Recipe, len(recipes))}
	for _, r := range recipes {
		if _, seen := c.byID[r.ID]; !seen {
			c.order = append(c.order, r.ID)
		}
		c.byID[r.ID] = r
	}
	sort.SliceStable(c.order, func(i, j int) bool {
		a, b := c.byID[c.order[i]], c.byID[c.order[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return c
}

// Get returns the recipe with the given ID.
func (c *Catalog) Get(id string) (Recipe, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// All returns every recipe in catalog order.
func (c *Catalog) All() []Recipe {
	out := make([]Recipe, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of recipes.
func (c *Catalog) Len() int {
	return len(c.order)
}

// FilterBySeason keeps recipes tagged with season, or with no season at all.
// An empty season keeps everything.
func FilterBySeason(recipes []Recipe, season string) []Recipe {
	if season == "" {
		return recipes
	}
	return slices.DeleteFunc(slices.Clone(recipes), func(r Recipe) bool {
		if len(r.Seasons) == 0 {
			return false
		}
		return !slices.ContainsFunc(r.Seasons, func(s string) bool {
			return strings.EqualFold(s, season)
		})
	})
}

// FilterByDishType keeps recipes tagged with one of types, or with no dish
// type at all. No types keeps everything.
func FilterByDishType(recipes []Recipe, types []string) []Recipe {
	if len(types) == 0 {
		return recipes
	}
	return slices.DeleteFunc(slices.Clone(recipes), func(r Recipe) bool {
		if len(r.DishTypes) == 0 {
			return false
		}
		return !slices.ContainsFunc(r.DishTypes, func(d string) bool {
			return slices.ContainsFunc(types, func(t string) bool { return strings.EqualFold(d, t) })
		})
	})
}

// SeasonOf returns the season label recipes are tagged with for the month of t.
func SeasonOf(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "hiver"
	case time.March, time.April, time.May:
		return "printemps"
	case time.June, time.July, time.August:
		return "été"
	}
	return "automne"
}
