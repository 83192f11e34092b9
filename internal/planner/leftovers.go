package planner

import (
	"fmt"
	"time"
)

const leftoverWindowDays = 2

// placedDish is a transportable dish cooked earlier in the run.
type placedDish struct {
	at       time.Time
	recipeID string
	name     string
	party    int
	reused   bool
}

// leftover returns the earliest dish cooked one or two days before at that
// has not been reused yet and whose recipe is still transportable.
func (r *run) leftover(at time.Time) (*placedDish, bool) {
	var found *placedDish
	for i := range r.transportables {
		d := &r.transportables[i]
		if d.reused || !isRealName(d.name) {
			continue
		}
		gap := daysBetween(d.at, at)
		if gap <= 0 || gap > leftoverWindowDays {
			continue
		}
		rec, ok := r.g.catalog.Get(d.recipeID)
		if !ok || !rec.Transportable {
			continue
		}
		if found == nil || d.at.Before(found.at) {
			found = d
		}
	}
	return found, found != nil
}

func (r *run) placeLeftover(s Slot) Meal {
	meal := Meal{At: s.At, Participants: s.Participants, Leftover: true}
	dish, ok := r.leftover(s.At)
	if !ok {
		meal.Name = NoLeftoverName
		meal.Remarks = []string{fmt.Sprintf("no transportable dish from the previous %d days", leftoverWindowDays)}
		return meal
	}
	dish.reused = true

	meal.RecipeID = dish.recipeID
	meal.Name = dish.name
	meal.Remarks = []string{"leftover of " + dish.at.Format("Monday 02/01")}
	if rec, ok := r.g.catalog.Get(dish.recipeID); ok {
		meal.PrepMinutes = rec.TotalMinutes
	}
	r.commit(dish.recipeID, dish.name, dish.party)
	return meal
}

func isRealName(name string) bool {
	return name != "" && name != UnresolvedName && name != NoLeftoverName
}

// daysBetween counts calendar days from a to b, ignoring the time of day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
