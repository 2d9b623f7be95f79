package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	EntityVehicle = "vehicle"
	EntityExpense = "expense"
)

const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// RecordSyncMessage asks the worker to mirror one record into the audit
// export. It carries only the identity; the worker reads the current
// record state from the database, so stale messages converge on the
// latest version.
type RecordSyncMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(entity, id, action string) *RecordSyncMessage {
	return &RecordSyncMessage{
		Entity:    entity,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *RecordSyncMessage) Validate() error {
	if m.Entity != EntityVehicle && m.Entity != EntityExpense {
		return fmt.Errorf("unknown entity %q", m.Entity)
	}
	if m.Action != ActionUpsert && m.Action != ActionDelete {
		return fmt.Errorf("unknown action %q", m.Action)
	}
	if m.ID == "" {
		return fmt.Errorf("missing record id")
	}
	return nil
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
