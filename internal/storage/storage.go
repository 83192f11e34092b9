package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"menu-planner/internal/planner"
	"menu-planner/internal/sink"
)

// Archive is everything a generation produced.
type Archive struct {
	RunID       string         `json:"run_id"`
	CreatedAt   time.Time      `json:"created_at"`
	WeekOf      time.Time      `json:"week_of"`
	Realistic   planner.Result `json:"realistic"`
	Alternative planner.Result `json:"alternative"`
	Diagnostics int            `json:"diagnostics"`
	Persisted   *sink.Summary  `json:"persisted,omitempty"`
}

// MenuStore provides a file-based archive of generated menus, one JSON file per run.
type MenuStore struct {
	basePath string
}

// NewMenuStore creates a new MenuStore and ensures the base directory exists.
func NewMenuStore(basePath string) (*MenuStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", basePath, err)
	}
	return &MenuStore{basePath: basePath}, nil
}

// sanitizeRunID makes the run ID safe for filenames.
func sanitizeRunID(runID string) string {
	return strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(runID)
}

func (s *MenuStore) path(runID string) string {
	return filepath.Join(s.basePath, sanitizeRunID(runID)+".json")
}

// Save stores an archive, replacing any earlier file of the same run.
func (s *MenuStore) Save(a Archive) error {
	if a.RunID == "" {
		return fmt.Errorf("failed to save archive: empty run id")
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}

	if err := os.WriteFile(s.path(a.RunID), data, 0644); err != nil {
		return fmt.Errorf("failed to write archive file: %w", err)
	}
	return nil
}

// Load retrieves the archive of a run.
func (s *MenuStore) Load(runID string) (*Archive, error) {
	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive file: %w", err)
	}

	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal archive: %w", err)
	}
	return &a, nil
}

// Exists checks if the archive of a run exists.
func (s *MenuStore) Exists(runID string) bool {
	_, err := os.Stat(s.path(runID))
	return !os.IsNotExist(err)
}
