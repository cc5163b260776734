package notificator

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
)

// keyTelegramChatID is the key/value slot holding the chat bound via /start.
const keyTelegramChatID = "telegram_chat_id"

type TelegramNotificator struct {
	logger *logger.Logger
	bot    *bot.Bot

	db models.Repository
}

// NewTelegramNotificator starts the bot's update loop. The first user to
// send /start binds their chat as the notification target.
func NewTelegramNotificator(logger *logger.Logger, token string, db models.Repository) (*TelegramNotificator, error) {
	provider := &TelegramNotificator{
		logger: logger,
		db:     db,
	}
	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %s", err)
	}
	go b.Start(context.Background())
	provider.bot = b

	return provider, nil
}

func (t *TelegramNotificator) SendNotification(chatId, message string) {
	params := &bot.SendMessageParams{
		ChatID: chatId,
		Text:   message,
	}
	_, err := t.bot.SendMessage(context.Background(), params)
	if err != nil {
		t.logger.Error("Failed to send notification: ", err)
	}
}

func (t *TelegramNotificator) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	t.logger.Debug("Telegram update: ", update.Message.From.Username, " ", update.Message.Text)
	if update.Message.Text == "/start" {
		chatID := fmt.Sprint(update.Message.Chat.ID)
		if err := t.db.SetValue(keyTelegramChatID, chatID); err != nil {
			t.logger.Error("Failed to store telegram chat binding: ", err)
			return
		}
		t.logger.Info("Telegram chat bound for notifications: ", chatID)
		t.SendNotification(chatID, "This chat will now receive pending transfer alerts.")
	}
}
