package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender sends messages through the Telegram bot API.
type TelegramSender struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramSender connects the bot over an HTTP client bounded by
// timeout, so a stalled Telegram call cannot outlive the send deadline.
func NewTelegramSender(token string, timeout time.Duration) (*TelegramSender, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	return &TelegramSender{bot: bot}, nil
}

// API exposes the underlying bot client for the command bot.
func (t *TelegramSender) API() *tgbotapi.BotAPI {
	return t.bot
}

// SendMessage delivers text to a chat identity. Numeric identities are
// private/group chat ids, "@name" identities are public channels.
func (t *TelegramSender) SendMessage(ctx context.Context, chatID, text string) error {
	msg, err := messageFor(chatID, text)
	if err != nil {
		return err
	}
	return await(ctx, func() error {
		_, err := t.bot.Send(msg)
		return err
	})
}

func messageFor(chatID, text string) (tgbotapi.MessageConfig, error) {
	if strings.HasPrefix(chatID, "@") {
		return tgbotapi.NewMessageToChannel(chatID, text), nil
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return tgbotapi.NewMessage(id, text), nil
}
