package amqp

import (
	"encoding/json"
	"time"
)

// Event operations carried on the transaction events queue.
const (
	OpSync   = "sync"
	OpDelete = "delete"
)

// TransactionEvent is the lightweight message feeding the export worker.
// It carries only the operation and the (id, ownerId) pair; the worker
// fetches the full transaction from storage.
type TransactionEvent struct {
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(op, id, ownerID string) *TransactionEvent {
	return &TransactionEvent{
		Op:        op,
		ID:        id,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
