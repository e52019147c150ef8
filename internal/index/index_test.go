package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rfbreplay.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_CreatesSchema(t *testing.T) {
	db := openTestDB(t)
	records, err := db.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected an empty index, got %d records", len(records))
	}
}

func TestRecordAndListSessions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	rec := &SessionRecord{
		ID:                "sess-1",
		CapturePath:       "/captures/one.pcap",
		ServerName:        "Example Desktop",
		ProtocolVersion:   "3.8",
		SecurityType:      "None",
		Width:             800,
		Height:            600,
		ScreenshotPath:    "/screenshots/one.png",
		OutputDir:         "/screenshots",
		TypedText:         "hello",
		Clipboard:         "world",
		ClientEventCounts: EventCounts{4: 2, 5: 1},
		ServerEventCounts: EventCounts{0: 3},
	}
	if err := db.RecordSession(ctx, rec); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}
	got, err := db.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "sess-1" {
		t.Fatalf("ListSessions = %+v, want one record with id sess-1", got)
	}
	if got[0].ProtocolVersion != "3.8" || got[0].SecurityType != "None" {
		t.Fatalf("ListSessions[0] handshake fields = %+v, want version 3.8 / security None", got[0])
	}
	if got[0].OutputDir != "/screenshots" {
		t.Fatalf("ListSessions[0].OutputDir = %q, want /screenshots", got[0].OutputDir)
	}
	if got[0].ClientEventCounts[4] != 2 || got[0].ClientEventCounts[5] != 1 {
		t.Fatalf("ListSessions[0].ClientEventCounts = %+v, want {4:2, 5:1}", got[0].ClientEventCounts)
	}
	if got[0].ServerEventCounts[0] != 3 {
		t.Fatalf("ListSessions[0].ServerEventCounts = %+v, want {0:3}", got[0].ServerEventCounts)
	}
}

func TestPruneOlderThan(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	old := &SessionRecord{ID: "old", CapturePath: "a", ReplayedAt: time.Now().Add(-48 * time.Hour)}
	recent := &SessionRecord{ID: "recent", CapturePath: "b", ReplayedAt: time.Now()}
	if err := db.RecordSession(ctx, old); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}
	if err := db.RecordSession(ctx, recent); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}

	n, err := db.PruneOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneOlderThan failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("PruneOlderThan removed %d rows, want 1", n)
	}

	remaining, err := db.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "recent" {
		t.Fatalf("ListSessions after prune = %+v, want only 'recent'", remaining)
	}
}

func TestOpen_CreatesParentlessPathError(t *testing.T) {
	_, err := Open(filepath.Join(string(os.PathSeparator), "nonexistent-dir-xyz", "rfbreplay.db"))
	if err == nil {
		t.Fatal("expected an error opening a database in a nonexistent directory")
	}
}
