package transcriptcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the cache database after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages transcript persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Entry summarizes one cached transcript for listings.
type Entry struct {
	VideoID        string
	Lang           string
	WithTimestamps bool
	Chars          int
	CreatedAt      time.Time
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Lookup returns the cached transcript for the exact video/language/timestamp
// combination, if present.
func (s *Store) Lookup(ctx context.Context, videoID, lang string, timestamps bool) (string, bool) {
	var transcript string
	err := s.db.QueryRowContext(ctx,
		"SELECT transcript FROM transcripts WHERE video_id = ? AND lang = ? AND with_timestamps = ?",
		videoID, normalizeLang(lang), boolToInt(timestamps),
	).Scan(&transcript)
	if err != nil {
		return "", false
	}
	return transcript, true
}

// Store inserts or replaces the cached transcript for a video.
func (s *Store) Store(ctx context.Context, videoID, lang string, timestamps bool, transcript string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return errors.New("video ID cannot be empty")
	}
	return s.execWithRetry(ctx,
		`INSERT INTO transcripts (video_id, lang, with_timestamps, transcript, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (video_id, lang, with_timestamps)
		 DO UPDATE SET transcript = excluded.transcript, created_at = excluded.created_at`,
		videoID, normalizeLang(lang), boolToInt(timestamps), transcript, time.Now().UTC().Format(time.RFC3339),
	)
}

// List returns all cached entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT video_id, lang, with_timestamps, length(transcript), created_at FROM transcripts ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			ts        int
			createdAt string
		)
		if err := rows.Scan(&entry.VideoID, &entry.Lang, &ts, &entry.Chars, &createdAt); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entry.WithTimestamps = ts != 0
		if parsed, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			entry.CreatedAt = parsed
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Remove deletes all cached variants of a video.
func (s *Store) Remove(ctx context.Context, videoID string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return errors.New("video ID cannot be empty")
	}
	return s.execWithRetry(ctx, "DELETE FROM transcripts WHERE video_id = ?", videoID)
}

// Clear removes every cached transcript.
func (s *Store) Clear(ctx context.Context) error {
	return s.execWithRetry(ctx, "DELETE FROM transcripts")
}

// Count returns the number of cached entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM transcripts").Scan(&count); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return count, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'ytscribe cache clear' or delete the database)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func normalizeLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
