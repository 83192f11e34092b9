package planner

import (
	"strings"
	"time"
)

// LeftoverMarker in a slot's participant column asks for a previously cooked
// transportable dish instead of a new recipe.
const LeftoverMarker = "Restes"

const (
	// UnresolvedName is the dish name of a slot no recipe could fill.
	UnresolvedName = "No recipe found"
	// NoLeftoverName is the dish name of a leftover slot with nothing to reuse.
	NoLeftoverName = "No leftover available"
)

// TimeTier limits the total preparation time of a slot's recipe.
type TimeTier string

const (
	TimeAny     TimeTier = ""
	TimeExpress TimeTier = "express"
	TimeQuick   TimeTier = "rapide"
)

// NutritionTier limits the calories of a slot's recipe.
type NutritionTier string

const (
	NutritionAny      NutritionTier = ""
	NutritionBalanced NutritionTier = "équilibré"
)

// Constraints are the optional requirements attached to a slot.
type Constraints struct {
	Transportable bool          `json:"transportable,omitempty"`
	Time          TimeTier      `json:"time,omitempty"`
	Nutrition     NutritionTier `json:"nutrition,omitempty"`
}

// IsZero reports whether no optional requirement is set.
func (c Constraints) IsZero() bool {
	return c == Constraints{}
}

// Slot is one planned meal occasion.
type Slot struct {
	At           time.Time `json:"at"`
	Participants string    `json:"participants"`
	Constraints
}

// IsLeftover reports whether the slot reuses an earlier dish.
func (s Slot) IsLeftover() bool {
	return strings.EqualFold(strings.TrimSpace(s.Participants), LeftoverMarker)
}

// Codes returns the participant codes of the slot.
func (s Slot) Codes() []string {
	if s.IsLeftover() {
		return nil
	}
	var codes []string
	for _, c := range strings.Split(s.Participants, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// PartySize is the number of people eating, at least one.
func (s Slot) PartySize() int {
	return max(1, len(s.Codes()))
}

// Params are the generation settings supplied by the caller.
type Params struct {
	AntiRepetitionDays  int
	BalancedMaxCalories float64
	ExpressMaxMinutes   int
	QuickMaxMinutes     int
}

func (p Params) timeCeiling(t TimeTier) (int, bool) {
	switch t {
	case TimeExpress:
		return p.ExpressMaxMinutes, true
	case TimeQuick:
		return p.QuickMaxMinutes, true
	}
	return 0, false
}

// Meal is the outcome of one slot.
type Meal struct {
	At           time.Time `json:"at"`
	RecipeID     string    `json:"recipe_id,omitempty"`
	Name         string    `json:"name"`
	Participants string    `json:"participants"`
	Remarks      []string  `json:"remarks,omitempty"`
	PrepMinutes  *int      `json:"prep_minutes,omitempty"`
	Availability string    `json:"availability,omitempty"`
	Leftover     bool      `json:"leftover,omitempty"`
	Relaxed      bool      `json:"relaxed,omitempty"`
}

// Resolved reports whether a recipe was assigned.
func (m Meal) Resolved() bool {
	return m.RecipeID != ""
}

// RemarksText joins the remarks for display.
func (m Meal) RemarksText() string {
	return strings.Join(m.Remarks, "; ")
}
