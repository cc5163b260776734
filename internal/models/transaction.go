package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses as reported by the backend.
const (
	TransactionStatusPending             = "pending"
	TransactionStatusPendingNotification = "pending_notification"
	TransactionStatusConfirmed           = "confirmed"
	TransactionStatusFailed              = "failed"
)

// Transaction is a transfer as the backend reports it, both in wallet
// history pages and embedded in notifications.
type Transaction struct {
	// TransactionID is the backend-assigned transaction hash.
	TransactionID string `json:"transaction_id"`
	// FromAddress is the sender.
	FromAddress string `json:"from_address"`
	// ToAddress is the recipient.
	ToAddress string `json:"to_address"`
	// Amount transferred, in MYC.
	Amount decimal.Decimal `json:"amount"`
	// Fee paid by the sender, in MYC.
	Fee decimal.Decimal `json:"fee"`
	// Status is one of the TransactionStatus values.
	Status string `json:"status"`
	// Data is an optional free-form payload attached by the sender.
	Data string `json:"data,omitempty"`
	// CreatedAt is when the backend recorded the transaction.
	CreatedAt time.Time `json:"created_at"`
}
