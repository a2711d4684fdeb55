// Package archive keeps a queryable SQLite record of every article the
// mirror has rendered. The JSON ledger stays the source of truth for
// dedupe; the archive exists so mirrored metadata can be listed and counted
// without re-parsing post files.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the article archive using SQLite.
type Store struct {
	db *sql.DB
}

// Entry is one archived article row.
type Entry struct {
	ID          string
	Title       string
	Points      int
	Author      string
	ExternalURL string
	SourceURL   string
	Filename    string
	RunID       string
	MirroredAt  time.Time
}

// Open opens (or creates) the archive at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the articles table if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		points INTEGER DEFAULT 0,
		author TEXT,
		external_url TEXT,
		source_url TEXT,
		filename TEXT,
		run_id TEXT,
		mirrored_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one mirrored article. Recording the same id twice is a
// no-op, so retried runs stay idempotent.
func (s *Store) Record(e Entry) error {
	query := `
		INSERT OR IGNORE INTO articles (
			id, title, points, author, external_url,
			source_url, filename, run_id, mirrored_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		e.ID,
		e.Title,
		e.Points,
		e.Author,
		e.ExternalURL,
		e.SourceURL,
		e.Filename,
		e.RunID,
		formatTime(e.MirroredAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// Recent returns the most recently mirrored entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	query := `
		SELECT id, title, points, author, external_url,
		       source_url, filename, run_id, mirrored_at
		FROM articles
		ORDER BY mirrored_at DESC, CAST(id AS INTEGER) DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var author, externalURL, sourceURL, filename, runID sql.NullString
		var mirroredAt string

		err := rows.Scan(
			&e.ID, &e.Title, &e.Points, &author, &externalURL,
			&sourceURL, &filename, &runID, &mirroredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		e.Author = author.String
		e.ExternalURL = externalURL.String
		e.SourceURL = sourceURL.String
		e.Filename = filename.String
		e.RunID = runID.String
		e.MirroredAt = parseTime(mirroredAt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count returns the number of archived articles.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}

// Helper functions for time formatting.
func formatTime(t time.Time) string {
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
