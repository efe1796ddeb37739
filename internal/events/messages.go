package events

import (
	"encoding/json"
	"time"

	"expensetracker/internal/core"
)

// Event types double as AMQP routing keys.
const (
	TypeRecordAdded   = "record.added"
	TypeRecordRemoved = "record.removed"
)

// RecordEvent describes a change to the record store.
type RecordEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Kind      string    `json:"kind,omitempty"`
	Title     string    `json:"title,omitempty"`
	Date      string    `json:"date,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordAdded builds the event published after a record enters the store.
func NewRecordAdded(r core.Record, at time.Time) *RecordEvent {
	return &RecordEvent{
		Type:      TypeRecordAdded,
		ID:        r.ID,
		Kind:      string(r.Kind),
		Title:     r.Title,
		Date:      r.Date.ISO(),
		Amount:    r.Amount,
		Timestamp: at,
	}
}

// NewRecordRemoved carries only the id; the record no longer exists.
func NewRecordRemoved(id string, at time.Time) *RecordEvent {
	return &RecordEvent{
		Type:      TypeRecordRemoved,
		ID:        id,
		Timestamp: at,
	}
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes an event from JSON bytes
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
