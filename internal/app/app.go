package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"menu-planner/internal/config"
	"menu-planner/internal/database"
	"menu-planner/internal/history"
	"menu-planner/internal/metrics"
	"menu-planner/internal/pantry"
	"menu-planner/internal/planner"
	"menu-planner/internal/plansheet"
	"menu-planner/internal/recipe"
	"menu-planner/internal/sink"
	"menu-planner/internal/storage"
)

// PlanSource loads the weekly plan.
type PlanSource interface {
	Load(ctx context.Context, src string) (*plansheet.Sheet, error)
}

// Notifier announces a generated menu.
type Notifier interface {
	Notify(ctx context.Context, weekOf time.Time, realistic, alternative planner.Result) error
}

// ErrNoPlanSource is returned when neither the command line nor the
// configuration names a plan.
var ErrNoPlanSource = errors.New("no plan source configured")

// App holds the application's dependencies.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	recipeRepo   *recipe.Repository
	pantryRepo   *pantry.Repository
	historyRepo  *history.Repository
	metricsStore *metrics.Store
	menuStore    *storage.MenuStore

	plans    PlanSource
	remote   sink.Writer
	notifier Notifier
}

// NewApp creates and initializes a new App instance. remote and notifier are
// optional.
func NewApp(
	cfg *config.Config,
	logger *zap.Logger,
	db *database.DB,
	menuStore *storage.MenuStore,
	plans PlanSource,
	remote sink.Writer,
	notifier Notifier,
	out io.Writer,
) *App {
	return &App{
		cfg:          cfg,
		logger:       logger,
		out:          out,
		recipeRepo:   recipe.NewRepository(db.SQL, logger),
		pantryRepo:   pantry.NewRepository(db.SQL, logger),
		historyRepo:  history.NewRepository(db.SQL, logger),
		metricsStore: metrics.NewStore(db.SQL),
		menuStore:    menuStore,
		plans:        plans,
		remote:       remote,
		notifier:     notifier,
	}
}

// GenerateOptions tune one generation.
type GenerateOptions struct {
	// PlanSource overrides the configured plan URL or file.
	PlanSource string
	// Persist writes the realistic menu to the meal history and the remote sink.
	Persist bool
	// Notify announces the menus on Telegram when a notifier is configured.
	Notify bool
}

// inputs is everything the generator needs, read before it starts.
type inputs struct {
	slots       []planner.Slot
	catalog     *recipe.Catalog
	ingredients []pantry.Ingredient
	links       []pantry.Link
	analyzer    *history.Analyzer
	diagnostics int
}

// GenerateMenu builds the realistic and alternative menus for the plan,
// persists and announces them, and prints them.
func (a *App) GenerateMenu(ctx context.Context, opts GenerateOptions) (*storage.Archive, error) {
	src := opts.PlanSource
	if src == "" {
		src = a.cfg.PlanSource
	}
	if src == "" {
		return nil, ErrNoPlanSource
	}

	in, err := a.loadInputs(ctx, src)
	if err != nil {
		return nil, err
	}

	generator := planner.NewGenerator(in.catalog, in.ingredients, in.links, in.analyzer, a.params(), a.logger)
	realistic, alternative := generator.Generate(in.slots)

	runID := ulid.Make().String()
	archive := &storage.Archive{
		RunID:       runID,
		CreatedAt:   time.Now().UTC(),
		Realistic:   realistic,
		Alternative: alternative,
		Diagnostics: in.diagnostics,
	}
	if len(in.slots) > 0 {
		archive.WeekOf = planner.WeekStart(realistic.Meals[0].At)
	}

	if opts.Persist {
		archive.Persisted = a.persist(ctx, runID, realistic)
	}

	for _, res := range []planner.Result{realistic, alternative} {
		if err := a.metricsStore.Record(ctx, metrics.MapResult(runID, res, in.diagnostics, res.Elapsed)); err != nil {
			a.logger.Warn("Failed to record run metrics", zap.String("run_id", runID), zap.Error(err))
		}
	}

	if err := a.menuStore.Save(*archive); err != nil {
		a.logger.Warn("Failed to archive menu", zap.String("run_id", runID), zap.Error(err))
	}

	if opts.Notify && a.notifier != nil {
		if err := a.notifier.Notify(ctx, archive.WeekOf, realistic, alternative); err != nil {
			a.logger.Warn("Failed to announce menu", zap.String("run_id", runID), zap.Error(err))
		}
	}

	RenderArchive(a.out, archive)
	return archive, nil
}

func (a *App) params() planner.Params {
	return planner.Params{
		AntiRepetitionDays:  a.cfg.AntiRepetitionDays,
		BalancedMaxCalories: a.cfg.BalancedMaxCalories,
		ExpressMaxMinutes:   a.cfg.ExpressMaxMinutes,
		QuickMaxMinutes:     a.cfg.QuickMaxMinutes,
	}
}

func (a *App) loadInputs(ctx context.Context, src string) (*inputs, error) {
	sheet, err := a.plans.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	recipes, err := a.recipeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	if a.cfg.FilterBySeason && len(sheet.Slots) > 0 {
		recipes = recipe.FilterBySeason(recipes, recipe.SeasonOf(earliest(sheet.Slots)))
	}
	recipes = recipe.FilterByDishType(recipes, a.cfg.DishTypes)

	ingredients, err := a.pantryRepo.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	links, badLinks, err := a.pantryRepo.ListStockLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe ingredients: %w", err)
	}
	entries, badEntries, err := a.historyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load meal history: %w", err)
	}

	a.logger.Info("Generation inputs loaded",
		zap.Int("slots", len(sheet.Slots)),
		zap.Int("recipes", len(recipes)),
		zap.Int("ingredients", len(ingredients)),
		zap.Int("links", len(links)),
		zap.Int("history", len(entries)))

	return &inputs{
		slots:       sheet.Slots,
		catalog:     recipe.NewCatalog(recipes),
		ingredients: ingredients,
		links:       links,
		analyzer:    history.NewAnalyzer(entries, links),
		diagnostics: sheet.Diagnostics + badLinks + badEntries,
	}, nil
}

func earliest(slots []planner.Slot) time.Time {
	first := slots[0].At
	for _, s := range slots[1:] {
		if s.At.Before(first) {
			first = s.At
		}
	}
	return first
}

// persist appends the realistic menu to the local history, then pushes it to
// the remote sink when one is configured. It returns the remote outcome.
func (a *App) persist(ctx context.Context, runID string, res planner.Result) *sink.Summary {
	records := Records(runID, res.Meals)

	local := sink.Persist(ctx, a.historyRepo, records, a.logger)
	a.logger.Info("Menu added to meal history",
		zap.String("run_id", runID),
		zap.Int("succeeded", local.Succeeded),
		zap.Int("failed", local.Failed))

	if a.remote == nil {
		return nil
	}
	remote := sink.Persist(ctx, a.remote, records, a.logger)
	a.logger.Info("Menu pushed to sink",
		zap.String("run_id", runID),
		zap.Int("succeeded", remote.Succeeded),
		zap.Int("failed", remote.Failed))
	return &remote
}

// Records converts generated meals to sink records.
func Records(runID string, meals []planner.Meal) []sink.Record {
	records := make([]sink.Record, 0, len(meals))
	for _, m := range meals {
		records = append(records, sink.Record{
			RunID:        runID,
			At:           m.At,
			Name:         m.Name,
			RecipeID:     m.RecipeID,
			Participants: planner.Slot{Participants: m.Participants}.Codes(),
			Leftover:     m.Leftover,
		})
	}
	return records
}

// ListRuns prints the latest run metrics and the planner's footprint.
func (a *App) ListRuns(ctx context.Context, limit int) error {
	runs, err := a.metricsStore.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	RenderRuns(a.out, runs, metrics.GetSysHealth(a.cfg.DatabasePath, a.cfg.ArchivePath))
	return nil
}

// CleanupMetrics removes run metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, days)
}

// ShowArchive prints an archived generation.
func (a *App) ShowArchive(runID string) error {
	if !a.menuStore.Exists(runID) {
		return fmt.Errorf("no archived menu for run %s", runID)
	}
	archive, err := a.menuStore.Load(runID)
	if err != nil {
		return err
	}
	RenderArchive(a.out, archive)
	return nil
}
