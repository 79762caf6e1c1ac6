// Package tagcache stores agent responses in SQLite so unchanged content is
// not sent to the model again on the next build.
package tagcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inful/mdfp"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed response cache.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the cache at path. Use ":memory:" for an
// in-process cache.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS responses (
		fingerprint TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_responses_created_at ON responses(created_at);
	`)
	return err
}

// Fingerprint is the cache key for a prompt sent to model with instruction.
func Fingerprint(model, instruction, prompt string) string {
	return mdfp.CalculateFingerprintFromParts(model+"\n"+instruction, prompt)
}

// Get returns the stored response for fingerprint.
func (s *Store) Get(ctx context.Context, fingerprint string) (string, bool, error) {
	var response string
	err := s.db.QueryRowContext(ctx,
		"SELECT response FROM responses WHERE fingerprint = ?", fingerprint,
	).Scan(&response)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query response: %w", err)
	}
	return response, true, nil
}

// Put stores or replaces the response for fingerprint.
func (s *Store) Put(ctx context.Context, fingerprint, model, response string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (fingerprint, model, response, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET model = excluded.model, response = excluded.response, created_at = excluded.created_at`,
		fingerprint, model, response, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

// Purge deletes entries created before cutoff and returns how many were removed.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM responses WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge responses: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached responses.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM responses").Scan(&n); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
