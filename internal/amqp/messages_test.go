package amqp

import (
	"testing"
	"time"
)

func TestSnapshotMessageRoundTrip(t *testing.T) {
	fetched := time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC)
	msg := NewSnapshotMessage(42, "sheets", fetched)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := SnapshotMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RecordCount != 42 || got.Backend != "sheets" || !got.FetchedAt.Equal(fetched) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSnapshotMessageBadPayload(t *testing.T) {
	if _, err := SnapshotMessageFromJSON([]byte("not-json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
