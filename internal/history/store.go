// Package history persists build run records in SQLite so past builds can be
// inspected with the history command.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Record is one persisted build run.
type Record struct {
	ID        int64
	BuildID   string
	StartedAt time.Time
	Duration  time.Duration
	Status    string
	SourceDir string
	OutputDir string
	Commit    string
	Count     int
	Pages     []string
}

// Store implements site.RunRecorder using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (or creates) the build history database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		status TEXT NOT NULL,
		source_dir TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		commit_hash TEXT,
		page_count INTEGER NOT NULL,
		pages TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends a build report to the history.
func (s *Store) Record(ctx context.Context, report *site.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pagesJSON []byte
	if len(report.Pages) > 0 {
		var err error
		pagesJSON, err = json.Marshal(report.Pages)
		if err != nil {
			return fmt.Errorf("marshal pages: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, started_at, duration_ms, status, source_dir, output_dir, commit_hash, page_count, pages) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		report.BuildID, report.StartedAt.Unix(), report.Duration.Milliseconds(), report.Status,
		report.SourceDir, report.OutputDir, report.Commit, report.Count, pagesJSON,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}

	return nil
}

// List retrieves the most recent build records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, started_at, duration_ms, status, source_dir, output_dir, commit_hash, page_count, pages FROM builds ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByBuildID retrieves a single build record.
func (s *Store) GetByBuildID(ctx context.Context, buildID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, started_at, duration_ms, status, source_dir, output_dir, commit_hash, page_count, pages FROM builds WHERE build_id = ? ORDER BY id DESC LIMIT 1",
		buildID,
	)
	if err != nil {
		return nil, fmt.Errorf("query build: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("build not found: %s", buildID)
	}
	return &records[0], nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var startedUnix, durationMS int64
		var commit sql.NullString
		var pagesJSON []byte

		err := rows.Scan(&r.ID, &r.BuildID, &startedUnix, &durationMS, &r.Status,
			&r.SourceDir, &r.OutputDir, &commit, &r.Count, &pagesJSON)
		if err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}

		r.StartedAt = time.Unix(startedUnix, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Commit = commit.String

		if len(pagesJSON) > 0 {
			if err := json.Unmarshal(pagesJSON, &r.Pages); err != nil {
				return nil, fmt.Errorf("unmarshal pages: %w", err)
			}
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
