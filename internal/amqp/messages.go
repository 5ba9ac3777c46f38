package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotMessage announces that the snapshot worker replaced the local
// mirror of the payments dataset. Portals consuming it invalidate their
// record caches; the payload carries no row data.
type SnapshotMessage struct {
	RecordCount int       `json:"record_count"`
	Backend     string    `json:"backend"`
	FetchedAt   time.Time `json:"fetched_at"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewSnapshotMessage(recordCount int, backend string, fetchedAt time.Time) *SnapshotMessage {
	return &SnapshotMessage{
		RecordCount: recordCount,
		Backend:     backend,
		FetchedAt:   fetchedAt,
		Timestamp:   time.Now(),
	}
}

func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotMessageFromJSON(data []byte) (*SnapshotMessage, error) {
	var msg SnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
