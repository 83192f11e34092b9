package planner

import (
	"menu-planner/internal/recipe"
)

// recentNames is how many placed meal names feed the first-word check.
const recentNames = 3

// pick chooses a recipe for q, or reports false when no candidate survives.
// Recipes served the same week in earlier years come first; within each
// group a name whose first word was used by a recent meal is avoided when
// another choice exists.
func (r *run) pick(q query) (candidate, bool) {
	ranked := r.candidates(q)
	if len(ranked) == 0 {
		return candidate{}, false
	}

	preferred := r.g.history.SameCalendarWeekPriorYears(q.at)
	var seasonal []candidate
	for _, c := range ranked {
		if _, ok := preferred[c.recipe.ID]; ok {
			seasonal = append(seasonal, c)
		}
	}
	if len(seasonal) > 0 {
		byAvailability(seasonal)
		return r.avoidRepeatedWord(seasonal), true
	}
	return r.avoidRepeatedWord(ranked), true
}

func (r *run) avoidRepeatedWord(cs []candidate) candidate {
	excluded := make(map[string]struct{}, len(r.lastNames))
	for _, name := range r.lastNames {
		if w := recipe.FirstWord(name); w != "" {
			excluded[w] = struct{}{}
		}
	}
	for _, c := range cs {
		if _, ok := excluded[recipe.FirstWord(c.recipe.Name)]; !ok {
			return c
		}
	}
	return cs[0]
}

func (r *run) rememberName(name string) {
	r.lastNames = append(r.lastNames, name)
	if len(r.lastNames) > recentNames {
		r.lastNames = r.lastNames[len(r.lastNames)-recentNames:]
	}
}
