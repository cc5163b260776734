package notificator

import (
	"fmt"
	"runtime/debug"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
)

// Notificator fans a newly observed pending transfer out to the
// configured local channels (telegram, email). Channels are optional;
// a nil channel is simply skipped.
type Notificator struct {
	logger *logger.Logger
	db     models.Repository

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator
}

func NewNotificator(logger *logger.Logger, db models.Repository, telNotif *TelegramNotificator, emailNotif *EmailNotificator) *Notificator {
	return &Notificator{logger: logger, db: db, TelegramNotificator: telNotif, EmailNotificator: emailNotif}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// formatNotification renders the message shown on every channel.
func formatNotification(notification *models.PendingNotification) string {
	tx := notification.Transaction
	return fmt.Sprintf(
		"Incoming transfer awaiting your confirmation\nAmount: %s MYC\nFrom: %s\nTransaction: %s\nOpen claviger to accept or reject it.",
		notification.Amount.String(),
		tx.FromAddress,
		tx.TransactionID,
	)
}

// SendNotification pushes one pending transfer to every configured
// channel. Failures are logged per channel and never abort the fan-out.
func (n *Notificator) SendNotification(notification *models.PendingNotification) {
	if !notification.WellFormed() {
		n.logger.Error("Refusing to announce malformed notification")
		return
	}
	message := formatNotification(notification)

	if n.TelegramNotificator != nil {
		chatID, err := n.db.GetValue(keyTelegramChatID)
		if err != nil {
			n.logger.Error("Failed to get telegram chat binding: ", err)
		} else if chatID == "" {
			n.logger.Debug("No telegram chat bound yet, skipping telegram channel")
		} else {
			n.safeCall(func() { n.TelegramNotificator.SendNotification(chatID, message) }, "telegramNotification")
		}
	}
	if n.EmailNotificator != nil && n.EmailNotificator.Recipient != "" {
		n.safeCall(func() { n.EmailNotificator.SendNotification(n.EmailNotificator.Recipient, message) }, "emailNotification")
	}
}
