package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := NewFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "data/menu-planner.db", cfg.DatabasePath)
		assert.Equal(t, 14, cfg.AntiRepetitionDays)
		assert.Equal(t, 650.0, cfg.BalancedMaxCalories)
		assert.Equal(t, 15, cfg.ExpressMaxMinutes)
		assert.Equal(t, 30, cfg.QuickMaxMinutes)
		assert.True(t, cfg.FilterBySeason)
		assert.Empty(t, cfg.DishTypes)
		assert.False(t, cfg.SinkEnabled())
		assert.False(t, cfg.TelegramEnabled())
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("MENU_PLANNER_DATABASE_PATH", "/tmp/planner.db")
		t.Setenv("MENU_PLANNER_ANTI_REPETITION_DAYS", "21")
		t.Setenv("MENU_PLANNER_BALANCED_MAX_CALORIES", "500")
		t.Setenv("MENU_PLANNER_TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("MENU_PLANNER_TELEGRAM_CHAT_ID", "42")

		cfg, err := NewFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "/tmp/planner.db", cfg.DatabasePath)
		assert.Equal(t, 21, cfg.AntiRepetitionDays)
		assert.Equal(t, 500.0, cfg.BalancedMaxCalories)
		assert.Equal(t, int64(42), cfg.TelegramChatID)
		assert.True(t, cfg.TelegramEnabled())
	})

	t.Run("SinkWithoutKey", func(t *testing.T) {
		t.Setenv("MENU_PLANNER_SINK_URL", "http://sink.test")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "sink_admin_key is required when sink_url is set", err.Error())
	})

	t.Run("NegativeWindow", func(t *testing.T) {
		t.Setenv("MENU_PLANNER_ANTI_REPETITION_DAYS", "-1")

		_, err := NewFromEnv()
		require.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	content := "quick_max_minutes: 40\ndish_types: [plat, entrée]\nfilter_by_season: false\nsink_url: http://sink.test\nsink_admin_key: abc:0102\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.QuickMaxMinutes)
	assert.Equal(t, []string{"plat", "entrée"}, cfg.DishTypes)
	assert.False(t, cfg.FilterBySeason)
	assert.True(t, cfg.SinkEnabled())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
