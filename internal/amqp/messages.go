package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const MessageTypeSnapshotSaved = "snapshot.saved"

// SnapshotSavedMessage announces that a whole collection was rewritten.
// It carries no payload; consumers reload the snapshot from the store.
type SnapshotSavedMessage struct {
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSnapshotSavedMessage(key string, count int) *SnapshotSavedMessage {
	return &SnapshotSavedMessage{
		Type:      MessageTypeSnapshotSaved,
		Key:       key,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSavedMessageFromJSON decodes a message and rejects foreign types.
func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != MessageTypeSnapshotSaved {
		return nil, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	if msg.Key == "" {
		return nil, fmt.Errorf("message has no key")
	}
	return &msg, nil
}
