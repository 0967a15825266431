package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budget/internal/core"
)

// Action names the ledger mutation an event reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

func (a Action) IsValid() bool {
	return a == ActionCreated || a == ActionUpdated || a == ActionDeleted
}

// LedgerEvent is published after a mutation has been persisted. It carries
// the affected record so consumers do not need access to the store.
type LedgerEvent struct {
	Action     Action    `json:"action"`
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Category   string    `json:"category"`
	Amount     string    `json:"amount"`
	Date       string    `json:"date"`
	Timestamp  int64     `json:"timestamp"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewLedgerEvent(action Action, tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		Action:     action,
		ID:         tx.ID,
		Type:       tx.Type.String(),
		Category:   tx.Category,
		Amount:     tx.Amount.String(),
		Date:       tx.Date.String(),
		Timestamp:  tx.Timestamp,
		OccurredAt: time.Now().UTC(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and rejects ones without an id or
// with an unknown action.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.ID == "" {
		return nil, fmt.Errorf("ledger event without id")
	}
	if !ev.Action.IsValid() {
		return nil, fmt.Errorf("unknown ledger event action %q", ev.Action)
	}
	return &ev, nil
}
