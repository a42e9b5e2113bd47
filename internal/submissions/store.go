// Package submissions persists per-row submission records so batch outcomes
// survive the process and failed rows can be retried later.
package submissions

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"erecord/internal/config"
	"erecord/internal/recording"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes; mismatched databases are
// rejected rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Record is one row's submission outcome within a batch.
type Record struct {
	ID          int64
	BatchID     string
	RowIndex    int
	CountyID    string
	PackageName string
	PackageID   string
	RemoteID    string
	Status      recording.Status
	ErrorDetail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store manages submission persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the submissions database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "submissions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per-connection; a single connection keeps them in force for
	// every statement and serializes the submission workers' writes.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version.Int64 != schemaVersion:
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version.Int64, schemaVersion, s.path)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Insert stores a new record, assigning its ID and timestamps.
func (s *Store) Insert(ctx context.Context, record *Record) error {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (
            batch_id, row_index, county_id, package_name, package_id,
            remote_id, status, error_detail, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.BatchID,
		record.RowIndex,
		record.CountyID,
		record.PackageName,
		record.PackageID,
		nullableString(record.RemoteID),
		string(record.Status),
		nullableString(record.ErrorDetail),
		timestamp,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("submission id: %w", err)
	}
	record.ID = id
	record.CreatedAt = now
	record.UpdatedAt = now
	return nil
}

// Update persists the mutable fields of an existing record.
func (s *Store) Update(ctx context.Context, record *Record) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE submissions
            SET status = ?, remote_id = ?, error_detail = ?, updated_at = ?
          WHERE id = ?`,
		string(record.Status),
		nullableString(record.RemoteID),
		nullableString(record.ErrorDetail),
		now.Format(time.RFC3339Nano),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update submission %d: %w", record.ID, err)
	}
	record.UpdatedAt = now
	return nil
}

const recordColumns = "id, batch_id, row_index, county_id, package_name, package_id, remote_id, status, error_detail, created_at, updated_at"

// ListByBatch returns a batch's records ordered by row index.
func (s *Store) ListByBatch(ctx context.Context, batchID string) ([]*Record, error) {
	return s.list(ctx,
		"SELECT "+recordColumns+" FROM submissions WHERE batch_id = ? ORDER BY row_index",
		batchID)
}

// List returns records filtered by status, newest first. An empty status
// returns everything.
func (s *Store) List(ctx context.Context, status recording.Status, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}
	if status == "" {
		return s.list(ctx,
			"SELECT "+recordColumns+" FROM submissions ORDER BY id DESC LIMIT ?", limit)
	}
	return s.list(ctx,
		"SELECT "+recordColumns+" FROM submissions WHERE status = ? ORDER BY id DESC LIMIT ?",
		string(status), limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Stats returns the count of records per status.
func (s *Store) Stats(ctx context.Context) (map[recording.Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(1) FROM submissions GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[recording.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[recording.Status(status)] = count
	}
	return stats, rows.Err()
}

// ResetFailed returns failed records to pending so a later run can pick
// them up again. Invalid records are not reset: their source data is wrong
// and resubmitting the same rows cannot succeed.
func (s *Store) ResetFailed(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions
            SET status = ?, error_detail = NULL, updated_at = ?
          WHERE status = ?`,
		string(recording.StatusPending),
		time.Now().UTC().Format(time.RFC3339Nano),
		string(recording.StatusFailed),
	)
	if err != nil {
		return 0, fmt.Errorf("reset failed submissions: %w", err)
	}
	return res.RowsAffected()
}

// Health verifies the database is reachable.
func (s *Store) Health(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("submissions store not open")
	}
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("submissions db unavailable: %w", err)
	}
	return nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id          int64
		batchID     string
		rowIndex    int
		countyID    string
		packageName string
		packageID   string
		remoteID    sql.NullString
		statusStr   string
		errorDetail sql.NullString
		createdRaw  string
		updatedRaw  string
	)

	if err := scanner.Scan(
		&id,
		&batchID,
		&rowIndex,
		&countyID,
		&packageName,
		&packageID,
		&remoteID,
		&statusStr,
		&errorDetail,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}

	status, ok := recording.ParseStatus(statusStr)
	if !ok {
		return nil, fmt.Errorf("unknown submission status %q", statusStr)
	}
	createdAt, err := parseTimeString(createdRaw)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimeString(updatedRaw)
	if err != nil {
		return nil, err
	}

	return &Record{
		ID:          id,
		BatchID:     batchID,
		RowIndex:    rowIndex,
		CountyID:    countyID,
		PackageName: packageName,
		PackageID:   packageID,
		RemoteID:    remoteID.String,
		Status:      status,
		ErrorDetail: errorDetail.String,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}
