package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/history"
	"menu-planner/internal/pantry"
	"menu-planner/internal/recipe"
)

func ids(cs []candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.recipe.ID)
	}
	return out
}

func TestCandidateFilters(t *testing.T) {
	g := fixture{
		recipes: []recipe.Recipe{
			{ID: "a", Name: "Alpha", Transportable: true, TotalMinutes: ptr(10), Calories: ptr(500.0)},
			{ID: "b", Name: "Bravo", TotalMinutes: ptr(25), Calories: ptr(800.0)},
			{ID: "c", Name: "Charlie", Transportable: true},
			{ID: "d", Name: "Delta", DislikedBy: []string{"JD"}},
		},
	}.generator()

	tests := []struct {
		name         string
		participants string
		constraints  Constraints
		exclude      map[string]struct{}
		used         []string
		want         []string
	}{
		{name: "NoConstraints", participants: "AB", want: []string{"a", "b", "c", "d"}},
		{name: "Transportable", participants: "AB", constraints: Constraints{Transportable: true}, want: []string{"a", "c"}},
		{name: "Express", participants: "AB", constraints: Constraints{Time: TimeExpress}, want: []string{"a"}},
		{name: "Quick", participants: "AB", constraints: Constraints{Time: TimeQuick}, want: []string{"a", "b"}},
		{name: "Balanced", participants: "AB", constraints: Constraints{Nutrition: NutritionBalanced}, want: []string{"a"}},
		{name: "Excluded", participants: "AB", exclude: map[string]struct{}{"a": {}}, want: []string{"b", "c", "d"}},
		{name: "Used", participants: "AB", used: []string{"b"}, want: []string{"a", "c", "d"}},
		{name: "Disliked", participants: "AB, jd", want: []string{"a", "b", "c"}},
		{name: "TransportableAndQuick", participants: "AB", constraints: Constraints{Transportable: true, Time: TimeQuick}, want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := g.newRun(g.NewPantry(), Realistic, tt.exclude)
			for _, id := range tt.used {
				r.used[id] = struct{}{}
			}
			slot := Slot{At: monday, Participants: tt.participants}
			got := r.candidates(newQuery(slot, tt.constraints))
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCandidateHistoryFilters(t *testing.T) {
	build := func(window, interval int) *Generator {
		return fixture{
			recipes: []recipe.Recipe{
				{ID: "r1", Name: "Alpha"},
				{ID: "r2", Name: "Bravo"},
				{ID: "r3", Name: "Charlie"},
			},
			ingredients: []pantry.Ingredient{{ID: "fish", Name: "Cabillaud", Unit: "kg", IntervalDays: interval}},
			links: []pantry.Link{
				{RecipeID: "r2", IngredientID: "fish", QuantityPerPerson: ptr(0.2)},
				{RecipeID: "old", IngredientID: "fish", QuantityPerPerson: ptr(0.2)},
			},
			history: []history.Entry{
				{Date: monday.AddDate(0, 0, -3), RecipeID: "r1"},
				{Date: monday.AddDate(0, 0, -5), RecipeID: "old"},
				{Date: monday.AddDate(0, 0, -30), RecipeID: "r3"},
			},
			params: &Params{AntiRepetitionDays: window, BalancedMaxCalories: 650, ExpressMaxMinutes: 15, QuickMaxMinutes: 30},
		}.generator()
	}

	query := newQuery(Slot{At: monday, Participants: "AB"}, Constraints{})

	t.Run("RecentAndInterval", func(t *testing.T) {
		g := build(14, 7)
		assert.Equal(t, []string{"r3"}, ids(g.newRun(g.NewPantry(), Realistic, nil).candidates(query)))
	})

	t.Run("NoWindow", func(t *testing.T) {
		g := build(0, 7)
		assert.Equal(t, []string{"r1", "r3"}, ids(g.newRun(g.NewPantry(), Realistic, nil).candidates(query)))
	})

	t.Run("IntervalElapsed", func(t *testing.T) {
		g := build(14, 4)
		assert.Equal(t, []string{"r2", "r3"}, ids(g.newRun(g.NewPantry(), Realistic, nil).candidates(query)))
	})

	t.Run("NoInterval", func(t *testing.T) {
		g := build(14, 0)
		assert.Equal(t, []string{"r2", "r3"}, ids(g.newRun(g.NewPantry(), Realistic, nil).candidates(query)))
	})

	t.Run("WindowIsRelativeToSlotDate", func(t *testing.T) {
		g := build(14, 7)
		later := newQuery(Slot{At: monday.AddDate(0, 0, 12), Participants: "AB"}, Constraints{})
		assert.Equal(t, []string{"r1", "r2", "r3"}, ids(g.newRun(g.NewPantry(), Realistic, nil).candidates(later)))
	})
}

func TestCandidateRanking(t *testing.T) {
	f := fixture{
		recipes: []recipe.Recipe{
			{ID: "lo", Name: "Alpha"},
			{ID: "hi", Name: "Bravo"},
		},
		ingredients: []pantry.Ingredient{
			{ID: "flour", Name: "Farine", Unit: "kg", Quantity: 5},
			{ID: "yeast", Name: "Levure", Unit: "kg", Quantity: 0},
		},
		links: []pantry.Link{
			{RecipeID: "hi", IngredientID: "flour", QuantityPerPerson: ptr(0.2)},
			{RecipeID: "lo", IngredientID: "yeast", QuantityPerPerson: ptr(0.01)},
		},
		history: []history.Entry{
			{Date: monday.AddDate(0, 0, -60), RecipeID: "hi"},
			{Date: monday.AddDate(0, 0, -90), RecipeID: "hi"},
		},
	}
	g := f.generator()
	query := newQuery(Slot{At: monday, Participants: "AB"}, Constraints{})

	t.Run("RealisticByAvailability", func(t *testing.T) {
		got := g.newRun(g.NewPantry(), Realistic, nil).candidates(query)
		require.Equal(t, []string{"hi", "lo"}, ids(got))
		assert.Equal(t, 1.0, got[0].availability.MeanRatio)

		// An empty stock lowers the rank but never removes the recipe.
		assert.Equal(t, 0.0, got[1].availability.MeanRatio)
		assert.Equal(t, map[string]float64{"yeast": 0.01}, got[1].availability.Shortages)
	})

	t.Run("AlternativeByFrequency", func(t *testing.T) {
		got := g.newRun(g.NewPantry(), Alternative, map[string]struct{}{}).candidates(query)
		assert.Equal(t, []string{"lo", "hi"}, ids(got))
	})
}

func TestCandidateAntiWaste(t *testing.T) {
	build := func(riceStock, perPerson float64) *Generator {
		f := fixture{
			recipes:     []recipe.Recipe{{ID: "salted", Name: "Salted"}},
			ingredients: []pantry.Ingredient{{ID: "rice", Unit: "gr", Quantity: riceStock}, {ID: "salt", Unit: "gr", Quantity: 10}},
			links:       []pantry.Link{{RecipeID: "salted", IngredientID: "salt", QuantityPerPerson: ptr(5.0)}},
		}
		for i := range 11 {
			id := fmt.Sprintf("w%02d", i)
			f.recipes = append(f.recipes, recipe.Recipe{ID: id, Name: fmt.Sprintf("Waste %02d", i)})
			f.links = append(f.links, pantry.Link{RecipeID: id, IngredientID: "rice", QuantityPerPerson: ptr(perPerson)})
		}
		return f.generator()
	}
	query := newQuery(Slot{At: monday, Participants: "AB"}, Constraints{})

	t.Run("WellCovered", func(t *testing.T) {
		g := build(1000, 50)
		got := g.newRun(g.NewPantry(), Realistic, nil).candidates(query)
		assert.Equal(t, []string{"w00", "w01", "w02", "w03", "w04"}, ids(got))
	})

	t.Run("PoorlyCovered", func(t *testing.T) {
		g := build(150, 400)
		got := g.newRun(g.NewPantry(), Realistic, nil).candidates(query)
		require.Len(t, got, 10)
		assert.Equal(t, "salted", got[0].recipe.ID)
		assert.Equal(t, "w00", got[1].recipe.ID)
	})

	t.Run("NoSurplus", func(t *testing.T) {
		g := build(90, 50)
		got := g.newRun(g.NewPantry(), Realistic, nil).candidates(query)
		require.Len(t, got, 10)
		assert.Equal(t, "salted", got[0].recipe.ID)
	})
}
