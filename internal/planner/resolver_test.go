package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/history"
	"menu-planner/internal/recipe"
)

func TestPick(t *testing.T) {
	gratins := []recipe.Recipe{
		{ID: "g1", Name: "Gratin dauphinois"},
		{ID: "g2", Name: "Gratin de courgettes"},
		{ID: "s1", Name: "Soupe à l'oignon"},
	}
	query := newQuery(Slot{At: monday, Participants: "AB"}, Constraints{})

	t.Run("FirstCandidate", func(t *testing.T) {
		g := fixture{recipes: gratins}.generator()
		c, ok := g.newRun(g.NewPantry(), Realistic, nil).pick(query)
		require.True(t, ok)
		assert.Equal(t, "g1", c.recipe.ID)
	})

	t.Run("AvoidsRecentFirstWord", func(t *testing.T) {
		g := fixture{recipes: gratins}.generator()
		r := g.newRun(g.NewPantry(), Realistic, nil)
		r.rememberName("GRATIN de pâtes")
		c, ok := r.pick(query)
		require.True(t, ok)
		assert.Equal(t, "s1", c.recipe.ID)
	})

	t.Run("FallsBackWhenEveryWordIsRecent", func(t *testing.T) {
		g := fixture{recipes: gratins}.generator()
		r := g.newRun(g.NewPantry(), Realistic, nil)
		r.rememberName("Gratin de pâtes")
		r.rememberName("Soupe de poisson")
		c, ok := r.pick(query)
		require.True(t, ok)
		assert.Equal(t, "g1", c.recipe.ID)
	})

	t.Run("OnlyLastThreeNamesCount", func(t *testing.T) {
		g := fixture{recipes: gratins}.generator()
		r := g.newRun(g.NewPantry(), Realistic, nil)
		for _, n := range []string{"Gratin de pâtes", "Pizza", "Quiche", "Tacos"} {
			r.rememberName(n)
		}
		assert.Equal(t, []string{"Pizza", "Quiche", "Tacos"}, r.lastNames)
		c, ok := r.pick(query)
		require.True(t, ok)
		assert.Equal(t, "g1", c.recipe.ID)
	})

	t.Run("PrefersSameWeekOfPriorYears", func(t *testing.T) {
		g := fixture{
			recipes: gratins,
			history: []history.Entry{{Date: time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC), RecipeID: "g2"}},
		}.generator()
		c, ok := g.newRun(g.NewPantry(), Realistic, nil).pick(query)
		require.True(t, ok)
		assert.Equal(t, "g2", c.recipe.ID)
	})

	t.Run("PreferredIgnoresWordFilterBeforeFallingBack", func(t *testing.T) {
		g := fixture{
			recipes: gratins,
			history: []history.Entry{{Date: time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC), RecipeID: "g2"}},
		}.generator()
		r := g.newRun(g.NewPantry(), Realistic, nil)
		r.rememberName("Gratin de pâtes")
		c, ok := r.pick(query)
		require.True(t, ok)
		assert.Equal(t, "g2", c.recipe.ID)
	})

	t.Run("NoCandidate", func(t *testing.T) {
		g := fixture{}.generator()
		_, ok := g.newRun(g.NewPantry(), Realistic, nil).pick(query)
		assert.False(t, ok)
	})
}

func TestRelaxationLadder(t *testing.T) {
	tests := []struct {
		name        string
		recipes     []recipe.Recipe
		constraints Constraints
		wantID      string
		wantRemark  string
	}{
		{
			name: "NoRelaxationNeeded",
			recipes: []recipe.Recipe{
				{ID: "salad", Name: "Salade niçoise", Transportable: true, Calories: ptr(450.0)},
			},
			constraints: Constraints{Transportable: true, Nutrition: NutritionBalanced},
			wantID:      "salad",
		},
		{
			name: "NutritionFirst",
			recipes: []recipe.Recipe{
				{ID: "salad", Name: "Salade de pâtes", Transportable: true, Calories: ptr(900.0)},
				{ID: "bowl", Name: "Bowl", Calories: ptr(400.0)},
			},
			constraints: Constraints{Transportable: true, Nutrition: NutritionBalanced},
			wantID:      "salad",
			wantRemark:  "nutrition constraint relaxed",
		},
		{
			name: "TimeBeforeTransportable",
			recipes: []recipe.Recipe{
				{ID: "tart", Name: "Tarte aux poireaux", Transportable: true, TotalMinutes: ptr(45)},
				{ID: "omelette", Name: "Omelette", TotalMinutes: ptr(10)},
			},
			constraints: Constraints{Transportable: true, Time: TimeExpress},
			wantID:      "tart",
			wantRemark:  "time constraint relaxed",
		},
		{
			name: "Transportable",
			recipes: []recipe.Recipe{
				{ID: "omelette", Name: "Omelette", TotalMinutes: ptr(10)},
			},
			constraints: Constraints{Transportable: true, Time: TimeExpress},
			wantID:      "omelette",
			wantRemark:  "transportable constraint relaxed",
		},
		{
			name: "EverythingCleared",
			recipes: []recipe.Recipe{
				{ID: "steak", Name: "Steak frites", TotalMinutes: ptr(40), Calories: ptr(900.0)},
			},
			constraints: Constraints{Transportable: true, Time: TimeQuick, Nutrition: NutritionBalanced},
			wantID:      "steak",
			wantRemark:  "all constraints relaxed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fixture{recipes: tt.recipes}.generator()
			res := g.Run([]Slot{{At: monday, Participants: "AB", Constraints: tt.constraints}}, g.NewPantry(), Realistic, nil)

			require.Len(t, res.Meals, 1)
			meal := res.Meals[0]
			assert.Equal(t, tt.wantID, meal.RecipeID)
			if tt.wantRemark == "" {
				assert.Empty(t, meal.Remarks)
				assert.False(t, meal.Relaxed)
				return
			}
			assert.Equal(t, []string{tt.wantRemark}, meal.Remarks)
			assert.True(t, meal.Relaxed)
			assert.Equal(t, 1, res.Stats.Relaxed)
		})
	}
}

func TestLadderSteps(t *testing.T) {
	original := Constraints{Transportable: true, Time: TimeExpress, Nutrition: NutritionBalanced}

	var got []Constraints
	for _, step := range ladder {
		require.True(t, step.applies(original))
		got = append(got, step.relax(original))
	}

	assert.Equal(t, []Constraints{
		{Transportable: true, Time: TimeExpress},
		{Transportable: true, Nutrition: NutritionBalanced},
		{Time: TimeExpress, Nutrition: NutritionBalanced},
		{},
	}, got, "each step relaxes one flag of the original constraints")

	for _, step := range ladder {
		assert.False(t, step.applies(Constraints{}))
	}
}
