// Package history keeps the most recent scored attempts in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// DefaultMaxRecords is the number of attempts retained.
const DefaultMaxRecords = 200

// TrendSize is the number of attempts returned for the progress chart.
const TrendSize = 30

var ErrClosed = errors.New("history store is closed")

// Record is one scored attempt.
type Record struct {
	ID         string    `json:"id"`
	Transcript string    `json:"transcript"`
	WPM        int       `json:"wpm"`
	Language   string    `json:"language"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
	// Confidence is the recognizer's confidence (0-1). It is nil for typed
	// transcripts.
	Confidence         *float64 `json:"confidence"`
	ConfidenceLevel    int      `json:"confidenceLevel"`
	GrammarAccuracy    int      `json:"grammarAccuracy"`
	OverallPerformance int      `json:"overallPerformance"`
}

// Store is a capped, most-recent-first list of records.
type Store struct {
	db         *sql.DB
	maxRecords int
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS attempts (
	seq                 INTEGER PRIMARY KEY AUTOINCREMENT,
	id                  TEXT    NOT NULL UNIQUE,
	transcript          TEXT    NOT NULL,
	wpm                 INTEGER NOT NULL,
	language            TEXT    NOT NULL,
	source              TEXT    NOT NULL,
	created_at_ms       INTEGER NOT NULL,
	confidence          REAL,
	confidence_level    INTEGER NOT NULL,
	grammar_accuracy    INTEGER NOT NULL,
	overall_performance INTEGER NOT NULL
)`

// Open connects to the SQLite database at dsn, applies pragmas and creates
// the schema. maxRecords <= 0 selects DefaultMaxRecords.
func Open(dsn string, maxRecords int) (*Store, error) {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, maxRecords: maxRecords}, nil
}

// OpenFile opens a database file, creating its directory when needed.
func OpenFile(path string, maxRecords int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	return Open(path, maxRecords)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// MaxRecords returns the retention cap.
func (s *Store) MaxRecords() int { return s.maxRecords }

// Add inserts rec as the most recent attempt and trims the oldest beyond the
// cap.
func (s *Store) Add(ctx context.Context, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapClosed(err)
	}
	defer tx.Rollback()

	var conf sql.NullFloat64
	if rec.Confidence != nil {
		conf = sql.NullFloat64{Float64: *rec.Confidence, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO attempts (id, transcript, wpm, language, source, created_at_ms,
			confidence, confidence_level, grammar_accuracy, overall_performance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Transcript, rec.WPM, rec.Language, rec.Source, rec.Timestamp.UnixMilli(),
		conf, rec.ConfidenceLevel, rec.GrammarAccuracy, rec.OverallPerformance)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM attempts WHERE seq NOT IN (
			SELECT seq FROM attempts ORDER BY seq DESC LIMIT ?
		)`, s.maxRecords)
	if err != nil {
		return fmt.Errorf("trim attempts: %w", err)
	}

	return tx.Commit()
}

// List returns up to limit records, most recent first. limit <= 0 returns
// all retained records.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > s.maxRecords {
		limit = s.maxRecords
	}
	return s.query(ctx, `
		SELECT id, transcript, wpm, language, source, created_at_ms,
			confidence, confidence_level, grammar_accuracy, overall_performance
		FROM attempts ORDER BY seq DESC LIMIT ?`, limit)
}

// Trend returns the last n records in chronological order.
func (s *Store) Trend(ctx context.Context, n int) ([]Record, error) {
	recs, err := s.List(ctx, n)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// Count returns the number of retained records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts`).Scan(&n); err != nil {
		return 0, wrapClosed(err)
	}
	return n, nil
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM attempts`); err != nil {
		return fmt.Errorf("clear attempts: %w", wrapClosed(err))
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return wrapClosed(s.db.PingContext(ctx))
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", wrapClosed(err))
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec  Record
			ms   int64
			conf sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &rec.Transcript, &rec.WPM, &rec.Language, &rec.Source, &ms,
			&conf, &rec.ConfidenceLevel, &rec.GrammarAccuracy, &rec.OverallPerformance); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ms).UTC()
		if conf.Valid {
			c := conf.Float64
			rec.Confidence = &c
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func wrapClosed(err error) error {
	if err != nil && strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}
