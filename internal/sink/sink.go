// Package sink persists generated meals, one independent write per meal.
package sink

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Record is one generated meal as handed to a sink.
type Record struct {
	RunID        string
	At           time.Time
	Name         string
	RecipeID     string
	Participants []string
	// Leftover meals and unresolved slots carry no recipe relation.
	Leftover bool
}

// HasRecipeRelation reports whether the record points at a freshly cooked recipe.
func (r Record) HasRecipeRelation() bool {
	return r.RecipeID != "" && !r.Leftover
}

// Writer accepts a single record.
type Writer interface {
	Write(ctx context.Context, rec Record) error
}

// Summary counts the outcome of a Persist call.
type Summary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Persist writes every record, best-effort. A failed write is logged and
// counted; it never stops the following writes.
func Persist(ctx context.Context, w Writer, records []Record, logger *zap.Logger) Summary {
	var s Summary
	for _, rec := range records {
		if err := w.Write(ctx, rec); err != nil {
			s.Failed++
			logger.Warn("failed to persist meal",
				zap.String("name", rec.Name),
				zap.Time("at", rec.At),
				zap.Error(err))
			continue
		}
		s.Succeeded++
	}
	return s
}
