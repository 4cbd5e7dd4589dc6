package notify

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramChannel pushes notifications into a single admin chat. It ignores
// the email recipient list; the destination chat is fixed by configuration.
type TelegramChannel struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
}

// NewTelegramChannel connects the bot. chatID is the configured admin chat.
func NewTelegramChannel(token, chatID string) (*TelegramChannel, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("INFO: Telegram notifications authorized on account %s", bot.Self.UserName)

	return &TelegramChannel{BotAPI: bot, ChatID: id}, nil
}

func (t *TelegramChannel) Dispatch(ctx context.Context, recipients []string, n Notification) error {
	text := n.Subject
	if len(n.Attachments) > 0 {
		text = fmt.Sprintf("%s (%d evidence files attached)", text, len(n.Attachments))
	}

	msg := tgbotapi.NewMessage(t.ChatID, text)
	if _, err := t.BotAPI.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
