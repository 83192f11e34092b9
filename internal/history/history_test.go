package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"menu-planner/internal/database"
	"menu-planner/internal/pantry"
	"menu-planner/internal/sink"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 19, 30, 0, 0, time.Local)
}

func TestAnalyzer(t *testing.T) {
	entries := []Entry{
		{Date: date(2026, 10, 10), RecipeID: "curry"},
		{Date: date(2026, 10, 1), RecipeID: "curry"},
		{Date: date(2026, 10, 15), RecipeID: "soup"},
		{Date: date(2025, 10, 14), RecipeID: "gratin"}, // ISO week 42 of 2025
		{Date: date(2024, 10, 16), RecipeID: "tart"},   // ISO week 42 of 2024
		{Date: date(2026, 10, 13), RecipeID: "stew"},   // same week, same year
		{Date: time.Time{}, RecipeID: "undated"},
		{Date: date(2026, 10, 2), RecipeID: ""},
	}
	links := []pantry.Link{
		{RecipeID: "soup", IngredientID: "leek"},
		{RecipeID: "gratin", IngredientID: "leek"},
		{RecipeID: "curry", IngredientID: "lentils"},
	}
	a := NewAnalyzer(entries, links)
	asOf := date(2026, 10, 15)

	t.Run("Frequency", func(t *testing.T) {
		assert.Equal(t, 2, a.Frequency("curry"))
		assert.Equal(t, 0, a.Frequency("undated"))
		assert.Equal(t, 0, a.Frequency("unknown"))
	})

	t.Run("IsRecentRecipe", func(t *testing.T) {
		assert.True(t, a.IsRecentRecipe("curry", asOf, 7))
		assert.False(t, a.IsRecentRecipe("curry", asOf, 5), "served exactly window days ago is outside the window")
		assert.True(t, a.IsRecentRecipe("soup", asOf, 1), "same day counts")
		assert.False(t, a.IsRecentRecipe("soup", date(2026, 10, 14), 7), "future entries are not recent")
		assert.False(t, a.IsRecentRecipe("curry", asOf, 0))
	})

	t.Run("IngredientUsedWithinInterval", func(t *testing.T) {
		assert.True(t, a.IngredientUsedWithinInterval("leek", asOf, 2))
		assert.True(t, a.IngredientUsedWithinInterval("lentils", asOf, 5), "on the boundary day counts")
		assert.False(t, a.IngredientUsedWithinInterval("lentils", asOf, 4))
		assert.False(t, a.IngredientUsedWithinInterval("leek", asOf, 0))
		assert.False(t, a.IngredientUsedWithinInterval("salt", asOf, 30))
	})

	t.Run("SameCalendarWeekPriorYears", func(t *testing.T) {
		got := a.SameCalendarWeekPriorYears(asOf)
		assert.Equal(t, map[string]struct{}{"gratin": {}, "tart": {}}, got)
	})
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2026-10-19", "2026-10-19T12:00:00+02:00", "19/10/2026 12:30", " 2026-10-19 12:00 "} {
		d, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 19, d.Day())
	}
	_, err := ParseDate("lundi")
	assert.Error(t, err)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "history.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.SQL, zap.NewNop())
	require.NoError(t, repo.Append(ctx, "2026-10-01", "r1", "Curry", ""))
	require.NoError(t, repo.Append(ctx, "pas une date", "r2", "Soupe", ""))

	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Write(ctx, sink.Record{At: at, RecipeID: "r3", Name: "Chili", RunID: "run-1"}))
	require.NoError(t, repo.Write(ctx, sink.Record{At: at, Name: "no leftover available"}))
	require.NoError(t, repo.Write(ctx, sink.Record{At: at.Add(24 * time.Hour), RecipeID: "r3", Name: "Chili", Leftover: true}))

	entries, dropped, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, entries, 2)
	assert.Equal(t, "r1", entries[0].RecipeID)
	assert.Equal(t, "r3", entries[1].RecipeID)
	assert.True(t, entries[1].Date.Equal(at))

	found, err := repo.Has(ctx, "2026-10-01", "r1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.Has(ctx, "2026-10-02", "r1")
	require.NoError(t, err)
	assert.False(t, found)
}
