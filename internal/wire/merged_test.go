package wire

import (
	"testing"
	"time"
)

func at(sec int) time.Time {
	return time.Unix(int64(sec), 0)
}

func TestMergedStream_DeliversEarliestTimestampFirst(t *testing.T) {
	client := NewDirectionalStream([]Payload{{Timestamp: at(2), Data: []byte("c1")}})
	server := NewDirectionalStream([]Payload{{Timestamp: at(1), Data: []byte("s1")}})
	merged := NewMergedStream(client, server)

	if got := merged.NextOrigin(); got != OriginServer {
		t.Fatalf("expected server first, got %s", got)
	}
	server.Next()
	if got := merged.NextOrigin(); got != OriginClient {
		t.Fatalf("expected client next, got %s", got)
	}
}

func TestMergedStream_DrainsOneSidedWhenOtherExhausted(t *testing.T) {
	client := NewDirectionalStream(nil)
	server := NewDirectionalStream([]Payload{
		{Timestamp: at(1), Data: []byte("a")},
		{Timestamp: at(2), Data: []byte("b")},
	})
	merged := NewMergedStream(client, server)

	for i := 0; i < 2; i++ {
		if got := merged.NextOrigin(); got != OriginServer {
			t.Fatalf("iteration %d: expected server, got %s", i, got)
		}
		server.Next()
	}
	if got := merged.NextOrigin(); got != OriginNone {
		t.Fatalf("expected none once both exhausted, got %s", got)
	}
}

func TestMergedStream_CurrentTimestampRetainedAfterDrain(t *testing.T) {
	server := NewDirectionalStream([]Payload{{Timestamp: at(5), Data: []byte("x")}})
	server.Next()
	ts, ok := server.CurrentTimestamp()
	if !ok || !ts.Equal(at(5)) {
		t.Fatalf("expected retained timestamp 5, got %v ok=%v", ts, ok)
	}
	if _, ok := server.NextTimestamp(); ok {
		t.Fatal("expected NextTimestamp to report none once queue is empty")
	}
}
