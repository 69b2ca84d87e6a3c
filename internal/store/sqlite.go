package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/me/mitopipeline/pkg/pipeline"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", filepath.Dir(dbPath), err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// WAL lets parallel setups against one history file write without blocking readers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// RecordSetup inserts rec. An empty ID is filled with a new "setup_" ID and
// a zero CreatedAt with the current time.
func (s *SQLiteStore) RecordSetup(ctx context.Context, rec *pipeline.SetupRecord) error {
	if rec.ID == "" {
		rec.ID = "setup_" + uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.logger.Debug("sql", "op", "insert", "table", "setups", "id", rec.ID)

	stepsJSON, err := json.Marshal(nonNil(rec.Steps))
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	tasksJSON, err := json.Marshal(nonNil(rec.Tasks))
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	tools := rec.Tools
	if tools == nil {
		tools = map[pipeline.Software]string{}
	}
	toolsJSON, err := json.Marshal(tools)
	if err != nil {
		return fmt.Errorf("marshal tools: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO setups (id, status, directory, output, steps, tasks, tools, slurm, dry_run, error_code, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Status), rec.Directory, rec.Output,
		string(stepsJSON), string(tasksJSON), string(toolsJSON),
		boolToInt(rec.Slurm), boolToInt(rec.DryRun), string(rec.ErrorCode), rec.Error,
		rec.CreatedAt.UTC().Format(timeFormat),
	)
	return err
}

// GetSetup returns the record with id, or nil if there is none.
func (s *SQLiteStore) GetSetup(ctx context.Context, id string) (*pipeline.SetupRecord, error) {
	s.logger.Debug("sql", "op", "select", "table", "setups", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, directory, output, steps, tasks, tools, slurm, dry_run, error_code, error, created_at
		 FROM setups WHERE id = ?`, id)
	rec, err := scanSetup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListSetups returns the most recent records first. A limit <= 0 returns all.
func (s *SQLiteStore) ListSetups(ctx context.Context, limit int) ([]*pipeline.SetupRecord, error) {
	s.logger.Debug("sql", "op", "select", "table", "setups", "limit", limit)

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, directory, output, steps, tasks, tools, slurm, dry_run, error_code, error, created_at
		 FROM setups ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*pipeline.SetupRecord
	for rows.Next() {
		rec, err := scanSetup(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// timeFormat is fixed width so created_at sorts correctly as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

type scanner interface {
	Scan(dest ...any) error
}

func scanSetup(row scanner) (*pipeline.SetupRecord, error) {
	var rec pipeline.SetupRecord
	var status, errorCode, stepsJSON, tasksJSON, toolsJSON, createdAt string
	var slurm, dryRun int

	err := row.Scan(&rec.ID, &status, &rec.Directory, &rec.Output, &stepsJSON, &tasksJSON, &toolsJSON,
		&slurm, &dryRun, &errorCode, &rec.Error, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.Status = pipeline.SetupStatus(status)
	rec.ErrorCode = pipeline.ErrorCode(errorCode)
	rec.Slurm = slurm != 0
	rec.DryRun = dryRun != 0

	if err := json.Unmarshal([]byte(stepsJSON), &rec.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	if err := json.Unmarshal([]byte(tasksJSON), &rec.Tasks); err != nil {
		return nil, fmt.Errorf("unmarshal tasks: %w", err)
	}
	if err := json.Unmarshal([]byte(toolsJSON), &rec.Tools); err != nil {
		return nil, fmt.Errorf("unmarshal tools: %w", err)
	}
	rec.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &rec, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
