// Package baseline persists per-rule active violation counts using
// SQLite, keyed by project, so successive runs can be compared for
// regressions.
package baseline

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

// Store handles persistent baseline storage for one project.
type Store struct {
	db        *sql.DB
	projectID string
}

// Delta is the change in one rule's active count between two snapshots.
type Delta struct {
	RuleID   string
	Previous int
	Current  int
}

// Regression reports whether the rule's active count increased.
func (d Delta) Regression() bool {
	return d.Current > d.Previous
}

// New opens (creating if needed) the baseline database at dbPath.
func New(dbPath, projectID string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}

	ctx := context.Background()
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := runSchemaMigration(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run schema migration: %w", err)
	}

	return &Store{db: db, projectID: projectID}, nil
}

// runSchemaMigration ensures the baselines table exists
func runSchemaMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS baselines (
			project_id TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			count INTEGER NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT (unixepoch()),
			PRIMARY KEY (project_id, rule_id)
		);
	`)
	return err //nolint:wrapcheck // Schema migration error is self-explanatory
}

// Close closes the store
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close() //nolint:wrapcheck // Database close error is self-explanatory
	}
	return nil
}

// Load returns the stored per-rule counts. A missing baseline is an
// empty map, not an error.
func (s *Store) Load(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT rule_id, count FROM baselines WHERE project_id = ?",
		s.projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var ruleID string
		var count int
		if err := rows.Scan(&ruleID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan baseline row: %w", err)
		}
		counts[ruleID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read baseline rows: %w", err)
	}

	return counts, nil
}

// Save replaces the project's baseline with the given counts.
func (s *Store) Save(ctx context.Context, counts map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin baseline transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM baselines WHERE project_id = ?", s.projectID); err != nil {
		return fmt.Errorf("failed to clear baseline: %w", err)
	}

	ruleIDs := make([]string, 0, len(counts))
	for ruleID := range counts {
		ruleIDs = append(ruleIDs, ruleID)
	}
	sort.Strings(ruleIDs)

	for _, ruleID := range ruleIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO baselines (project_id, rule_id, count) VALUES (?, ?, ?)",
			s.projectID, ruleID, counts[ruleID]); err != nil {
			return fmt.Errorf("failed to save baseline count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit baseline: %w", err)
	}
	return nil
}

// Diff compares a previous snapshot against current counts. Rules
// absent from one side are treated as zero. Results are sorted by
// rule id.
func Diff(previous, current map[string]int) []Delta {
	seen := make(map[string]struct{}, len(previous)+len(current))
	ruleIDs := make([]string, 0, len(previous)+len(current))
	for ruleID := range previous {
		seen[ruleID] = struct{}{}
		ruleIDs = append(ruleIDs, ruleID)
	}
	for ruleID := range current {
		if _, ok := seen[ruleID]; !ok {
			ruleIDs = append(ruleIDs, ruleID)
		}
	}
	sort.Strings(ruleIDs)

	deltas := make([]Delta, 0, len(ruleIDs))
	for _, ruleID := range ruleIDs {
		prev := previous[ruleID]
		cur := current[ruleID]
		if prev == cur {
			continue
		}
		deltas = append(deltas, Delta{RuleID: ruleID, Previous: prev, Current: cur})
	}
	return deltas
}
