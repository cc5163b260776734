package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Notification statuses. Lifecycle transitions happen server-side; the
// client only ever lists pending ones and triggers accept/reject.
const (
	NotificationStatusPending  = "pending"
	NotificationStatusAccepted = "accepted"
	NotificationStatusRejected = "rejected"
	NotificationStatusExpired  = "expired"
)

// NotificationAction is the recipient's response to a pending transfer.
type NotificationAction string

const (
	ActionAccept NotificationAction = "accept"
	ActionReject NotificationAction = "reject"
)

// Valid reports whether the action is one the backend understands.
func (a NotificationAction) Valid() bool {
	return a == ActionAccept || a == ActionReject
}

// PendingNotification is a server-held record of an inbound transfer
// awaiting the recipient's consent. It belongs to exactly one recipient
// address and is never cached locally beyond the current poll cycle.
type PendingNotification struct {
	// ID is the backend-assigned notification identifier.
	ID int64 `json:"id"`
	// Transaction is the embedded transfer snapshot. Records arriving
	// without it are malformed and must be dropped before display.
	Transaction *Transaction `json:"transaction"`
	// RecipientAddress is the wallet the notification belongs to.
	RecipientAddress string `json:"recipient_address"`
	// SenderAddress is the wallet that initiated the transfer.
	SenderAddress string `json:"sender_address"`
	// Amount duplicates the transaction amount for cheap rendering.
	Amount decimal.Decimal `json:"amount"`
	// Status at fetch time; pending unless the backend says otherwise.
	Status string `json:"status"`
	// Message is an optional note from the sender.
	Message string `json:"message,omitempty"`
	// CreatedAt is when the backend created the notification.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is the deadline after which the backend expires it.
	ExpiresAt time.Time `json:"expires_at"`
}

// WellFormed reports whether the record carries everything the
// confirmation workflow needs.
func (n *PendingNotification) WellFormed() bool {
	return n != nil && n.ID != 0 && n.Transaction != nil
}

// NotificationPage is the backend's notification listing envelope.
type NotificationPage struct {
	// Notifications in backend order. The client does not re-sort.
	Notifications []*PendingNotification `json:"notifications"`
	// Total notifications for the address, any status.
	Total int `json:"total"`
	// Pending is the count of still-pending notifications.
	Pending int `json:"pending"`
}
