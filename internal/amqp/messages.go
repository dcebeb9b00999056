package amqp

import (
	"encoding/json"
	"time"

	"expensetracker/internal/core"
)

const (
	EventTransactionRecorded = "transaction.recorded"
	EventReportExported      = "report.exported"
)

// TransactionRecordedMessage announces a transaction appended to the ledger.
// Amounts travel as fixed two-decimal strings so consumers never see floats.
type TransactionRecordedMessage struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Amount    string    `json:"amount"`
	Kind      string    `json:"kind"`
	Category  string    `json:"category"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// ReportExportedMessage announces a monthly report written to disk.
type ReportExportedMessage struct {
	Type      string    `json:"type"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Income    string    `json:"income"`
	Expense   string    `json:"expense"`
	Balance   string    `json:"balance"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(tx core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		Type:      EventTransactionRecorded,
		ID:        tx.ID,
		Amount:    tx.Amount.String(),
		Kind:      string(tx.Kind),
		Category:  string(tx.Category),
		Date:      tx.Date.String(),
		Timestamp: time.Now().UTC(),
	}
}

func NewReportExportedMessage(t core.MonthTotals) *ReportExportedMessage {
	return &ReportExportedMessage{
		Type:      EventReportExported,
		Year:      t.Year,
		Month:     int(t.Month),
		Income:    t.Income.String(),
		Expense:   t.Expense.String(),
		Balance:   t.Balance().String(),
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToJSON converts the message to JSON bytes
func (m *ReportExportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
