package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChanged is published after every successful ledger mutation. It
// carries the totals only; consumers that need detail read the record.
type LedgerChanged struct {
	Operation     string    `json:"operation"`
	TotalIncome   float64   `json:"totalIncome"`
	TotalExpenses float64   `json:"totalExpenses"`
	Balance       float64   `json:"balance"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerChanged(operation string, totalIncome, totalExpenses, balance float64) *LedgerChanged {
	return &LedgerChanged{
		Operation:     operation,
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		Balance:       balance,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *LedgerChanged) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedFromJSON(data []byte) (*LedgerChanged, error) {
	var msg LedgerChanged
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
