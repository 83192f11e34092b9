package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"menu-planner/internal/sink"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseDate accepts the date formats found in exported meal logs.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// Repository stores the meal history in SQLite. It also acts as a sink so the
// realistic menu can be appended to the log it was planned against.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB, logger *zap.Logger) *Repository {
	return &Repository{db: d, logger: logger}
}

// Append records a served meal. The date is stored verbatim so imports keep
// whatever the source log contained.
func (r *Repository) Append(ctx context.Context, servedAt, recipeID, name, runID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meal_history (served_at, recipe_id, name, run_id) VALUES (?, ?, ?, ?)`,
		servedAt, recipeID, name, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry for %s: %w", recipeID, err)
	}
	return nil
}

// Has reports whether the log already holds the meal, compared on the
// stored date text and recipe.
func (r *Repository) Has(ctx context.Context, servedAt, recipeID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meal_history WHERE served_at = ? AND recipe_id = ?`,
		servedAt, recipeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up history entry for %s: %w", recipeID, err)
	}
	return n > 0, nil
}

// Write implements sink.Writer. Only freshly cooked meals become history;
// leftovers and unresolved slots are skipped.
func (r *Repository) Write(ctx context.Context, rec sink.Record) error {
	if !rec.HasRecipeRelation() {
		return nil
	}
	return r.Append(ctx, rec.At.Format(time.RFC3339), rec.RecipeID, rec.Name, rec.RunID)
}

// List returns every parseable history entry. The second return value counts
// rows dropped because their date could not be read.
func (r *Repository) List(ctx context.Context) ([]Entry, int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT served_at, recipe_id FROM meal_history ORDER BY id`)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var (
		entries []Entry
		dropped int
	)
	for rows.Next() {
		var raw, recipeID string
		if err := rows.Scan(&raw, &recipeID); err != nil {
			return nil, 0, fmt.Errorf("failed to scan history entry: %w", err)
		}
		date, err := ParseDate(raw)
		if err != nil {
			dropped++
			r.logger.Warn("dropping history entry", zap.String("recipe_id", recipeID), zap.Error(err))
			continue
		}
		entries = append(entries, Entry{Date: date, RecipeID: recipeID})
	}
	return entries, dropped, rows.Err()
}
