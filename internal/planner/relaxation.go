package planner

// relaxation is one rung of the fallback ladder. Every rung starts again
// from the slot's original constraints.
type relaxation struct {
	remark  string
	applies func(Constraints) bool
	relax   func(Constraints) Constraints
}

var ladder = []relaxation{
	{
		remark:  "nutrition constraint relaxed",
		applies: func(c Constraints) bool { return c.Nutrition == NutritionBalanced },
		relax: func(c Constraints) Constraints {
			c.Nutrition = NutritionAny
			return c
		},
	},
	{
		remark:  "time constraint relaxed",
		applies: func(c Constraints) bool { return c.Time != TimeAny },
		relax: func(c Constraints) Constraints {
			c.Time = TimeAny
			return c
		},
	},
	{
		remark:  "transportable constraint relaxed",
		applies: func(c Constraints) bool { return c.Transportable },
		relax: func(c Constraints) Constraints {
			c.Transportable = false
			return c
		},
	},
	{
		remark:  "all constraints relaxed",
		applies: func(c Constraints) bool { return !c.IsZero() },
		relax:   func(Constraints) Constraints { return Constraints{} },
	},
}

const unresolvedRemark = "no recipe matches this slot, even with every constraint relaxed"

// resolution is the outcome of resolving a standard slot.
type resolution struct {
	candidate candidate
	remark    string
	relaxed   bool
}

// resolve tries the slot as requested, then walks the ladder until a rung
// yields a recipe. Constraint sets already tried are not retried.
func (r *run) resolve(s Slot) (resolution, bool) {
	if c, ok := r.pick(newQuery(s, s.Constraints)); ok {
		return resolution{candidate: c}, true
	}

	tried := map[Constraints]struct{}{s.Constraints: {}}
	for _, step := range ladder {
		if !step.applies(s.Constraints) {
			continue
		}
		relaxed := step.relax(s.Constraints)
		if _, done := tried[relaxed]; done {
			continue
		}
		tried[relaxed] = struct{}{}

		if c, ok := r.pick(newQuery(s, relaxed)); ok {
			return resolution{candidate: c, remark: step.remark, relaxed: true}, true
		}
	}
	return resolution{remark: unresolvedRemark}, false
}
