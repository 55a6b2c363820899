package amqp

import (
	"encoding/json"
	"time"
)

// AccountReconcileMessage asks the audit worker to re-verify one account's
// stored balance against its transaction log. It carries only identifiers;
// the worker reads the current state from the database.
type AccountReconcileMessage struct {
	UserID    int64     `json:"userId"`
	AccountID int64     `json:"accountId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAccountReconcileMessage(userID, accountID int64) *AccountReconcileMessage {
	return &AccountReconcileMessage{
		UserID:    userID,
		AccountID: accountID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *AccountReconcileMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AccountReconcileMessageFromJSON creates a message from JSON bytes.
func AccountReconcileMessageFromJSON(data []byte) (*AccountReconcileMessage, error) {
	var msg AccountReconcileMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
