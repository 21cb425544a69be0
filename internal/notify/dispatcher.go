package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stakecast/internal/store"
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher fans one message out to every active subscriber and then to
// the public broadcast channel. Delivery failures to individual channels
// are logged and skipped; only a store failure fails the whole call.
type Dispatcher struct {
	store       store.SessionStore
	sender      ChannelSender
	broadcaster Broadcaster
	sendTimeout time.Duration
	logger      *zap.Logger
}

func NewDispatcher(sessions store.SessionStore, sender ChannelSender, broadcaster Broadcaster, sendTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:       sessions,
		sender:      sender,
		broadcaster: broadcaster,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Announce delivers text to all active subscribers in listing order, then
// issues the broadcast. The subscriber list is read at call time.
func (d *Dispatcher) Announce(ctx context.Context, text string) error {
	sessions, err := d.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active sessions: %w", err)
	}

	delivered := 0
	for _, sess := range sessions {
		if err := d.send(ctx, sess.ChatID, text); err != nil {
			d.logger.Warn("subscriber delivery failed",
				zap.String("chat_id", sess.ChatID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}

	if d.broadcaster != nil {
		if err := d.broadcast(ctx, text); err != nil {
			d.logger.Warn("broadcast failed", zap.Error(err))
		}
	}

	d.logger.Info("announce complete",
		zap.Int("subscribers", len(sessions)),
		zap.Int("delivered", delivered),
	)
	return nil
}

func (d *Dispatcher) send(ctx context.Context, chatID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	return d.sender.SendMessage(ctx, chatID, text)
}

func (d *Dispatcher) broadcast(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	return d.broadcaster.Broadcast(ctx, text)
}
