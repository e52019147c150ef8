// Package index is the session index (spec.md/SPEC_FULL.md §4.12): a
// small sqlite-backed catalog of replayed sessions, recording the
// capture path, negotiated handshake parameters, desktop name/size, the
// screenshot artifact location and output directory, the accumulated
// typed-text/clipboard trail, and per-opcode event counts, for later
// lookup.
//
// Adapted from rjsadow-sortie's internal/db package: the same
// uptrace/bun-over-modernc.org/sqlite stack and golang-migrate embedded
// migration setup, narrowed from a multi-tenant application catalog (with
// a postgres option) down to one table serving one purpose. See
// DESIGN.md for why the postgres dimension and the rest of that
// package's tables were dropped rather than adapted.
package index

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

// EventCounts is a per-opcode occurrence tally that serializes to JSON
// in the database, grounded on rjsadow-sortie's internal/db.StringSlice
// driver.Valuer/sql.Scanner pattern (same JSON-in-a-text-column
// approach, narrowed to a map instead of a slice).
type EventCounts map[uint8]int

// Value implements driver.Valuer for database storage.
func (c EventCounts) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal EventCounts: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval.
func (c *EventCounts) Scan(src any) error {
	if src == nil {
		*c = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into EventCounts", src)
	}

	if len(data) == 0 || string(data) == "{}" {
		*c = EventCounts{}
		return nil
	}

	return json.Unmarshal(data, c)
}

// SessionRecord is one replayed session's catalog entry: the capture
// path, negotiated handshake parameters, framebuffer size, per-opcode
// event activity, accumulated clipboard/typed-text trail, the output
// artifact's location, and when the replay ran, per SPEC_FULL.md §3.
type SessionRecord struct {
	bun.BaseModel `bun:"table:session_records"`

	ID                string      `bun:"id,pk"`
	CapturePath       string      `bun:"capture_path,notnull"`
	ServerName        string      `bun:"server_name,notnull"`
	ProtocolVersion   string      `bun:"protocol_version,notnull"`
	SecurityType      string      `bun:"security_type,notnull"`
	Width             int         `bun:"width,notnull"`
	Height            int         `bun:"height,notnull"`
	ScreenshotPath    string      `bun:"screenshot_path,notnull"`
	OutputDir         string      `bun:"output_dir,notnull"`
	TypedText         string      `bun:"typed_text,notnull"`
	Clipboard         string      `bun:"clipboard,notnull"`
	ClientEventCounts EventCounts `bun:"client_event_counts,notnull"`
	ServerEventCounts EventCounts `bun:"server_event_counts,notnull"`
	ReplayedAt        time.Time   `bun:"replayed_at,nullzero,notnull,default:current_timestamp"`
}

// DB wraps a bun connection over the session index's sqlite file.
type DB struct {
	bun *bun.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// brings its schema up to date.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{bun: bun.NewDB(conn, sqlitedialect.New())}, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.bun.Close()
}

// RecordSession inserts a new session record.
func (db *DB) RecordSession(ctx context.Context, rec *SessionRecord) error {
	_, err := db.bun.NewInsert().Model(rec).Exec(ctx)
	if err != nil {
		return fmt.Errorf("index: record session: %w", err)
	}
	return nil
}

// ListSessions returns every recorded session, most recently replayed first.
func (db *DB) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	var records []SessionRecord
	err := db.bun.NewSelect().Model(&records).OrderExpr("replayed_at DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("index: list sessions: %w", err)
	}
	return records, nil
}

// PruneOlderThan deletes every session record replayed before the given
// age cutoff, returning the number of rows removed. This replaces the
// teacher's ticker-based Cleaner goroutine with a one-shot sweep,
// matching this module's one-shot CLI design (spec.md §5 / SPEC_FULL.md
// §4.12): there is no long-lived process for a ticker to run inside.
func (db *DB) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	res, err := db.bun.NewDelete().
		Model((*SessionRecord)(nil)).
		Where("replayed_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("index: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("index: prune: %w", err)
	}
	return n, nil
}
