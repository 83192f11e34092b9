package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB, logger *zap.Logger) *Repository {
	return &Repository{db: d, logger: logger}
}

// Save inserts or updates a recipe in the database.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	seasons, err := json.Marshal(nonNil(rec.Seasons))
	if err != nil {
		return fmt.Errorf("failed to marshal seasons: %w", err)
	}
	dishTypes, err := json.Marshal(nonNil(rec.DishTypes))
	if err != nil {
		return fmt.Errorf("failed to marshal dish types: %w", err)
	}
	disliked, err := json.Marshal(nonNil(rec.DislikedBy))
	if err != nil {
		return fmt.Errorf("failed to marshal dislikes: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, name, seasons, calories, proteins, total_minutes, dish_types, transportable, disliked_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			seasons = excluded.seasons,
			calories = excluded.calories,
			proteins = excluded.proteins,
			total_minutes = excluded.total_minutes,
			dish_types = excluded.dish_types,
			transportable = excluded.transportable,
			disliked_by = excluded.disliked_by`,
		rec.ID, rec.Name, string(seasons), rec.Calories, rec.Proteins, rec.TotalMinutes,
		string(dishTypes), rec.Transportable, string(disliked),
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a recipe by its ID.
func (r *Repository) Get(ctx context.Context, id string) (Recipe, bool, error) {
	row := r.db.QueryRowContext(ctx, selectRecipes+` WHERE id = ?`, id)
	rec, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Recipe{}, false, nil
	}
	if err != nil {
		return Recipe{}, false, fmt.Errorf("failed to get recipe by ID: %w", err)
	}
	return rec, true, nil
}

// List retrieves all recipes. Rows whose tag columns cannot be decoded are
// logged and skipped.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, selectRecipes+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			r.logger.Warn("skipping unreadable recipe row", zap.Error(err))
			continue
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}

const selectRecipes = `SELECT id, name, seasons, calories, proteins, total_minutes, dish_types, transportable, disliked_by FROM recipes`

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scan(s scanner) (Recipe, error) {
	var (
		rec                          Recipe
		seasons, dishTypes, disliked string
		calories, proteins           sql.NullFloat64
		minutes                      sql.NullInt64
	)
	if err := s.Scan(&rec.ID, &rec.Name, &seasons, &calories, &proteins, &minutes, &dishTypes, &rec.Transportable, &disliked); err != nil {
		return Recipe{}, err
	}
	if calories.Valid {
		rec.Calories = &calories.Float64
	}
	if proteins.Valid {
		rec.Proteins = &proteins.Float64
	}
	if minutes.Valid {
		m := int(minutes.Int64)
		rec.TotalMinutes = &m
	}
	if err := json.Unmarshal([]byte(seasons), &rec.Seasons); err != nil {
		return Recipe{}, fmt.Errorf("recipe %s: bad seasons: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(dishTypes), &rec.DishTypes); err != nil {
		return Recipe{}, fmt.Errorf("recipe %s: bad dish types: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(disliked), &rec.DislikedBy); err != nil {
		return Recipe{}, fmt.Errorf("recipe %s: bad dislikes: %w", rec.ID, err)
	}
	return rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
