package internal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger is the persisted set of video IDs that have already been summarized.
// It survives process restarts and is shared between concurrent invocations;
// the claim is a single atomic check-and-insert so a video is summarized at
// most once across all runs.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (or creates) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("ledger: mkdir %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initLedgerSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: init schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// initLedgerSchema creates the processed table if it doesn't exist.
func initLedgerSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS processed (
		video_id   TEXT PRIMARY KEY,
		title      TEXT,
		channel    TEXT,
		created_at TEXT NOT NULL
	)`)
	return err
}

// TryClaim atomically marks a video as processed. It returns true when this
// caller inserted the mark (proceed to summarize) and false when the video
// was already claimed by this or an earlier run.
func (l *Ledger) TryClaim(ctx context.Context, ref VideoRef) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO processed (video_id, title, channel, created_at) VALUES (?, ?, ?, ?)`,
		ref.ID, ref.Title, ref.Channel, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("ledger: claim %s: %w", ref.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ledger: claim %s: %w", ref.ID, err)
	}
	return n == 1, nil
}

// Contains reports whether a video ID is already marked processed.
func (l *Ledger) Contains(ctx context.Context, videoID string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed WHERE video_id = ?`, videoID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: lookup %s: %w", videoID, err)
	}
	return true, nil
}

// Count returns the number of processed marks.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger: count: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
