package notify

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"stakecast/internal/model"
	"stakecast/internal/store"
)

const replyTryLater = "Something went wrong, please try again later."

// Bot serves subscription commands over Telegram long polling. Command
// errors are logged and answered with a generic reply; the update loop
// never stops on a single failure.
type Bot struct {
	api    *tgbotapi.BotAPI
	store  store.SessionStore
	logger *zap.Logger
}

func NewBot(api *tgbotapi.BotAPI, sessions store.SessionStore, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, store: sessions, logger: logger}
}

// Run registers the command menu and consumes updates until ctx is done.
func (b *Bot) Run(ctx context.Context) {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "subscribe", Description: "Subscribe to staking updates"},
		tgbotapi.BotCommand{Command: "unsubscribe", Description: "Stop receiving updates"},
		tgbotapi.BotCommand{Command: "status", Description: "Show subscription status"},
	)
	if _, err := b.api.Request(commands); err != nil {
		b.logger.Warn("set bot commands failed", zap.Error(err))
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
	name := displayName(update.Message)

	var reply string
	switch update.Message.Command() {
	case "subscribe":
		reply = b.subscribe(ctx, chatID, name)
	case "unsubscribe":
		reply = b.unsubscribe(ctx, chatID)
	case "status":
		reply = b.status(ctx, chatID)
	default:
		return
	}

	msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("command reply failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) subscribe(ctx context.Context, chatID, name string) string {
	err := b.store.Create(ctx, chatID, name)
	switch {
	case err == nil:
		return "Subscribed. You will receive staking updates here."
	case errors.Is(err, store.ErrConflict):
		subscribed := true
		patch := model.SessionPatch{Name: &name, Subscribed: &subscribed}
		if err := b.store.Update(ctx, chatID, patch); err != nil {
			b.logger.Error("re-subscribe failed", zap.String("chat_id", chatID), zap.Error(err))
			return replyTryLater
		}
		return "Welcome back. Subscription re-activated."
	default:
		b.logger.Error("subscribe failed", zap.String("chat_id", chatID), zap.Error(err))
		return replyTryLater
	}
}

func (b *Bot) unsubscribe(ctx context.Context, chatID string) string {
	subscribed := false
	err := b.store.Update(ctx, chatID, model.SessionPatch{Subscribed: &subscribed})
	switch {
	case err == nil:
		return "Unsubscribed. Use /subscribe to receive updates again."
	case errors.Is(err, store.ErrNotFound):
		return "You are not subscribed."
	default:
		b.logger.Error("unsubscribe failed", zap.String("chat_id", chatID), zap.Error(err))
		return replyTryLater
	}
}

func (b *Bot) status(ctx context.Context, chatID string) string {
	sess, err := b.store.Get(ctx, chatID)
	switch {
	case err == nil && sess.Subscribed:
		return "You are subscribed to staking updates."
	case err == nil:
		return "Your subscription is paused. Use /subscribe to re-activate it."
	case errors.Is(err, store.ErrNotFound):
		return "You are not subscribed. Use /subscribe to receive updates."
	default:
		b.logger.Error("status lookup failed", zap.String("chat_id", chatID), zap.Error(err))
		return replyTryLater
	}
}

func displayName(msg *tgbotapi.Message) string {
	if msg.From != nil && msg.From.FirstName != "" {
		return msg.From.FirstName
	}
	if msg.Chat != nil && msg.Chat.Title != "" {
		return msg.Chat.Title
	}
	return strconv.FormatInt(msg.Chat.ID, 10)
}
