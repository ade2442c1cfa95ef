// Package journal keeps a SQLite history of completed loads and operator
// actions, so totals can be audited after a Reset.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sweeney/truck-scale/internal/logic"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at INTEGER NOT NULL,
	event       TEXT    NOT NULL,
	weight_kg   REAL    NOT NULL DEFAULT 0,
	load_count  INTEGER NOT NULL,
	total_kg    REAL    NOT NULL,
	factor      REAL    NOT NULL DEFAULT 0,
	reason      TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS events_occurred_at ON events (occurred_at);
`

// Entry is one journaled event.
type Entry struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Event      string    `json:"event"`
	WeightKg   float64   `json:"weight_kg"`
	LoadCount  int       `json:"load_count"`
	TotalKg    float64   `json:"total_kg"`
	Factor     float64   `json:"calibration_factor,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// Journal persists events in SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// The loop goroutine writes, HTTP handlers read; one connection keeps
	// SQLite locking out of the picture.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends an event.
func (j *Journal) Record(ctx context.Context, e logic.Event) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (occurred_at, event, weight_kg, load_count, total_kg, factor, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp.UTC().UnixMilli(), string(e.Type), e.Weight,
		int(e.Totals.LoadCount), e.Totals.TotalWeight, e.Factor, e.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", e.Type, err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, occurred_at, event, weight_kg, load_count, total_kg, factor, reason
		 FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var millis int64
		if err := rows.Scan(&e.ID, &millis, &e.Event, &e.WeightKg, &e.LoadCount, &e.TotalKg, &e.Factor, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.OccurredAt = time.UnixMilli(millis).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// LoadsSince sums completed loads recorded at or after since.
func (j *Journal) LoadsSince(ctx context.Context, since time.Time) (int, float64, error) {
	var count int
	var total sql.NullFloat64
	err := j.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(weight_kg) FROM events WHERE event = ? AND occurred_at >= ?`,
		string(logic.EventLoadCompleted), since.UTC().UnixMilli(),
	).Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("sum loads: %w", err)
	}
	return count, total.Float64, nil
}
