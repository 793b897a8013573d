// Package datastore records comparison runs in a local SQLite database.
package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/differ"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Run statuses besides the backend task states.
const (
	RunStatusStarted = "STARTED"
	memoryDSN        = ":memory:"
)

// HistoryDB wraps the SQL database connection holding run history.
type HistoryDB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RunRecord is one row of the run_history table.
type RunRecord struct {
	ID           int64
	TaskID       string
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	Status       string
	OldFileName  string
	NewFileName  string
	TotalCount   int
	DeleteCount  int
	InsertCount  int
	ReportPath   sql.NullString
	ErrorMessage sql.NullString
}

// Duration is how long the run took, zero while it is unfinished.
func (r RunRecord) Duration() time.Duration {
	if !r.FinishedAt.Valid {
		return 0
	}
	return r.FinishedAt.Time.Sub(r.StartedAt)
}

// RunCompletion holds what is known once a run ends.
type RunCompletion struct {
	FinishedAt   time.Time
	Status       string
	OldFileName  string
	NewFileName  string
	Counts       differ.Summary
	ReportPath   string
	ErrorMessage string
}

// NewHistoryDB opens the database, creating its directory, and ensures the schema.
func NewHistoryDB(ctx context.Context, dataSourceName string, logger zerolog.Logger) (*HistoryDB, error) {
	logger = logger.With().Str("component", "HistoryDB").Logger()
	logger.Info().Str("db_path", dataSourceName).Msg("Initializing history database connection")

	if dataSourceName == "" {
		return nil, common.NewValidationError("sqlite_db_path", dataSourceName, "database path is required")
	}
	if dataSourceName != memoryDSN {
		dbDir := filepath.Dir(dataSourceName)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create history database directory")
			return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
		}
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		logger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open history database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	if dataSourceName == memoryDSN {
		// every pooled connection would otherwise get its own empty database
		dbInstance.SetMaxOpenConns(1)
	}

	db := &HistoryDB{
		db:     dbInstance,
		logger: logger,
	}

	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", dataSourceName).Msg("Database initialized and schema verified.")
	return db, nil
}

// Close closes the database connection.
func (d *HistoryDB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// InitSchema creates the run_history table if it doesn't already exist.
func (d *HistoryDB) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS run_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		status TEXT NOT NULL,
		old_file_name TEXT NOT NULL DEFAULT '',
		new_file_name TEXT NOT NULL DEFAULT '',
		total_count INTEGER NOT NULL DEFAULT 0,
		delete_count INTEGER NOT NULL DEFAULT 0,
		insert_count INTEGER NOT NULL DEFAULT 0,
		report_path TEXT,
		error_message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_run_history_task ON run_history (task_id, started_at);
	`
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		d.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// RecordRunStart inserts a STARTED run and returns its row ID.
func (d *HistoryDB) RecordRunStart(ctx context.Context, taskID string, startedAt time.Time) (int64, error) {
	if taskID == "" {
		return 0, common.NewValidationError("task_id", taskID, "task id is required")
	}
	query := `INSERT INTO run_history (task_id, started_at, status) VALUES (?, ?, ?)`
	result, err := d.db.ExecContext(ctx, query, taskID, startedAt.UTC(), RunStatusStarted)
	if err != nil {
		d.logger.Error().Err(err).Str("task_id", taskID).Msg("Failed to record run start")
		return 0, fmt.Errorf("failed to insert run start record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	d.logger.Debug().Int64("db_id", id).Str("task_id", taskID).Msg("Recorded run start")
	return id, nil
}

// RecordRunCompletion fills in the outcome of a run.
func (d *HistoryDB) RecordRunCompletion(ctx context.Context, id int64, c RunCompletion) error {
	query := `UPDATE run_history SET finished_at = ?, status = ?, old_file_name = ?, new_file_name = ?,
		total_count = ?, delete_count = ?, insert_count = ?, report_path = ?, error_message = ? WHERE id = ?`
	result, err := d.db.ExecContext(ctx, query,
		c.FinishedAt.UTC(), c.Status, c.OldFileName, c.NewFileName,
		c.Counts.Total, c.Counts.Deletes, c.Counts.Inserts,
		nullString(c.ReportPath), nullString(c.ErrorMessage), id)
	if err != nil {
		d.logger.Error().Err(err).Int64("db_id", id).Msg("Failed to update run completion")
		return fmt.Errorf("failed to update run completion for ID %d: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return common.WrapErrorf(common.ErrNotFound, "run %d", id)
	}
	d.logger.Debug().Int64("db_id", id).Str("status", c.Status).Msg("Updated run completion")
	return nil
}

const selectRuns = `SELECT id, task_id, started_at, finished_at, status, old_file_name, new_file_name,
	total_count, delete_count, insert_count, report_path, error_message FROM run_history`

// ListRuns returns the most recent runs first. A non-positive limit returns all.
func (d *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := selectRuns + ` ORDER BY started_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		d.logger.Error().Err(err).Msg("Failed to query run history")
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run of a task.
func (d *HistoryDB) LatestRun(ctx context.Context, taskID string) (RunRecord, error) {
	row := d.db.QueryRowContext(ctx, selectRuns+` WHERE task_id = ? ORDER BY started_at DESC, id DESC LIMIT 1`, taskID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, common.WrapErrorf(common.ErrNotFound, "no run recorded for task %s", taskID)
	}
	return run, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var r RunRecord
	err := row.Scan(&r.ID, &r.TaskID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.OldFileName, &r.NewFileName,
		&r.TotalCount, &r.DeleteCount, &r.InsertCount, &r.ReportPath, &r.ErrorMessage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, err
		}
		return RunRecord{}, fmt.Errorf("failed to scan run record: %w", err)
	}
	return r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
