package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventOp names the mutation that produced a TransactionEvent.
type EventOp string

const (
	OpCreated EventOp = "created"
	OpUpdated EventOp = "updated"
	OpDeleted EventOp = "deleted"
)

func (o EventOp) Valid() bool {
	switch o {
	case OpCreated, OpUpdated, OpDeleted:
		return true
	}
	return false
}

// TransactionEvent announces that a transaction row changed. It carries only
// the id; consumers read the current row from the store.
type TransactionEvent struct {
	ID        int64     `json:"id"`
	Op        EventOp   `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(id int64, op EventOp) TransactionEvent {
	return TransactionEvent{
		ID:        id,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return TransactionEvent{}, err
	}
	if ev.ID <= 0 {
		return TransactionEvent{}, fmt.Errorf("event has invalid id %d", ev.ID)
	}
	if !ev.Op.Valid() {
		return TransactionEvent{}, fmt.Errorf("event has unknown op %q", ev.Op)
	}
	return ev, nil
}
