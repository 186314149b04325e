package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// EventKind says what happened to a transaction.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// TransactionEvent is published after every successful ledger write.
// Transaction holds the row as written; it is nil for deletes.
type TransactionEvent struct {
	EventID       string            `json:"event_id"`
	Kind          EventKind         `json:"kind"`
	TransactionID int64             `json:"transaction_id"`
	UserID        int64             `json:"user_id"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// NewTransactionEvent stamps a fresh event for t.
func NewTransactionEvent(kind EventKind, t core.Transaction) *TransactionEvent {
	ev := &TransactionEvent{
		EventID:       uuid.NewString(),
		Kind:          kind,
		TransactionID: t.ID,
		UserID:        t.UserID,
		Timestamp:     time.Now().UTC(),
	}
	if kind != EventDeleted {
		snapshot := t
		ev.Transaction = &snapshot
	}
	return ev
}

// ToJSON converts the message to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity-checks an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if !ev.Kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if ev.TransactionID <= 0 || ev.UserID <= 0 {
		return nil, fmt.Errorf("event %s: missing transaction or user id", ev.EventID)
	}
	if ev.Kind != EventDeleted && ev.Transaction == nil {
		return nil, fmt.Errorf("event %s: %s without transaction", ev.EventID, ev.Kind)
	}
	return &ev, nil
}
