// Package cli implements the menu-planner commands.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"menu-planner/internal/app"
	"menu-planner/internal/config"
	"menu-planner/internal/database"
	"menu-planner/internal/logging"
	"menu-planner/internal/plansheet"
	"menu-planner/internal/sink"
	"menu-planner/internal/storage"
	"menu-planner/internal/telegram"
)

var (
	configPath string
	envFile    string
	logLevel   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "menu-planner",
	Short: "Weekly menu generator",
	Long: "Builds a realistic and an alternative weekly menu from a meal plan, " +
		"the pantry stock and the meal history, with the matching shopping list.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file (environment variables override it)")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
}

// env bundles what every command needs. close releases the database.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.DB
	app    *app.App
}

func (e *env) close() {
	e.db.Close()
	_ = e.logger.Sync()
}

func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// openEnv wires the application from configuration.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	menuStore, err := storage.NewMenuStore(cfg.ArchivePath)
	if err != nil {
		db.Close()
		return nil, err
	}

	var remote sink.Writer
	if cfg.SinkEnabled() {
		remote = sink.NewHTTPWriter(cfg.SinkURL, cfg.SinkAdminKey, cfg.SinkRelationID)
	}

	var notifier app.Notifier
	if cfg.TelegramEnabled() {
		n, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Warn("Telegram notifications disabled", zap.Error(err))
		} else {
			notifier = n
		}
	}

	a := app.NewApp(cfg, logger, db, menuStore, plansheet.NewLoader(logger), remote, notifier, cmd.OutOrStdout())
	return &env{cfg: cfg, logger: logger, db: db, app: a}, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
