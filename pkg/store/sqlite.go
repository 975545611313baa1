package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists fetch history in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at DATETIME NOT NULL,
		source TEXT NOT NULL,
		error_kind TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		used REAL NOT NULL DEFAULT 0,
		"limit" REAL NOT NULL DEFAULT 0,
		remaining REAL NOT NULL DEFAULT 0,
		percentage INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_at ON fetches(at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create fetches table: %w", err)
	}

	return nil
}

// AppendFetch records one fetch attempt.
func (s *Store) AppendFetch(ctx context.Context, rec *FetchRecord) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO fetches (at, source, error_kind, message, used, "limit", remaining, percentage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.At.UTC(), rec.Source, rec.ErrorKind, rec.Message,
		rec.Used, rec.Limit, rec.Remaining, rec.Percentage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch record: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// RecentFetches returns the newest records first, up to limit.
func (s *Store) RecentFetches(ctx context.Context, limit int) ([]*FetchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, at, source, error_kind, message, used, "limit", remaining, percentage
		FROM fetches ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetches: %w", err)
	}
	defer rows.Close()

	var records []*FetchRecord
	for rows.Next() {
		rec := &FetchRecord{}
		if err := rows.Scan(&rec.ID, &rec.At, &rec.Source, &rec.ErrorKind, &rec.Message,
			&rec.Used, &rec.Limit, &rec.Remaining, &rec.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan fetch record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PruneFetches deletes records older than the retention window and returns
// how many rows were removed.
func (s *Store) PruneFetches(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := s.db.ExecContext(ctx, `DELETE FROM fetches WHERE at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune fetches: %w", err)
	}
	return res.RowsAffected()
}
