package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"menu-planner/internal/planner"
)

// timestampLayout is fixed-width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// RunMetric records the outcome of one generation run.
type RunMetric struct {
	RunID       string
	Mode        string
	Slots       int
	Resolved    int
	Unresolved  int
	Relaxed     int
	Leftovers   int
	Diagnostics int
	LatencyMS   int64
	Timestamp   time.Time
}

// Store handles persistence of run metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database. Recording the same run and mode
// twice keeps the latest values.
func (s *Store) Record(ctx context.Context, m RunMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_metrics (run_id, mode, slots, resolved, unresolved, relaxed, leftovers, diagnostics, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, mode) DO UPDATE SET
			slots = excluded.slots,
			resolved = excluded.resolved,
			unresolved = excluded.unresolved,
			relaxed = excluded.relaxed,
			leftovers = excluded.leftovers,
			diagnostics = excluded.diagnostics,
			latency_ms = excluded.latency_ms,
			created_at = excluded.created_at`,
		m.RunID, m.Mode, m.Slots, m.Resolved, m.Unresolved, m.Relaxed, m.Leftovers, m.Diagnostics, m.LatencyMS,
		ts.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record run metric %s/%s: %w", m.RunID, m.Mode, err)
	}
	return nil
}

// RecentRuns returns the latest metrics, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, mode, slots, resolved, unresolved, relaxed, leftovers, diagnostics, latency_ms, created_at
		FROM run_metrics
		ORDER BY created_at DESC, run_id DESC, mode DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run metrics: %w", err)
	}
	defer rows.Close()

	var results []RunMetric
	for rows.Next() {
		var (
			m         RunMetric
			createdAt string
		)
		if err := rows.Scan(&m.RunID, &m.Mode, &m.Slots, &m.Resolved, &m.Unresolved, &m.Relaxed, &m.Leftovers, &m.Diagnostics, &m.LatencyMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run metric: %w", err)
		}
		if m.Timestamp, err = time.Parse(timestampLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse run metric timestamp %q: %w", createdAt, err)
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timestampLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM run_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up run metrics: %w", err)
	}
	return res.RowsAffected()
}

// MapResult converts the outcome of a planner run to a RunMetric.
func MapResult(runID string, res planner.Result, diagnostics int, latency time.Duration) RunMetric {
	return RunMetric{
		RunID:       runID,
		Mode:        string(res.Mode),
		Slots:       res.Stats.Slots,
		Resolved:    res.Stats.Resolved,
		Unresolved:  res.Stats.Unresolved,
		Relaxed:     res.Stats.Relaxed,
		Leftovers:   res.Stats.Leftovers,
		Diagnostics: diagnostics,
		LatencyMS:   latency.Milliseconds(),
		Timestamp:   time.Now().UTC(),
	}
}
