package bridge

import (
	"context"

	"go.uber.org/zap"

	"stakecast/internal/journal"
	"stakecast/internal/listener"
)

// Pump drains the event queue and applies the bridge to each event.
// A bridge failure drops that event with a log line and never stops the
// pump; the next chain event is processed normally. Returns when ctx is
// done or the queue is closed and drained.
func Pump(ctx context.Context, queue *listener.Queue, b Bridge, jrnl *journal.Journal, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-queue.Events():
			if !ok {
				return
			}

			if jrnl != nil {
				if err := jrnl.Append(ev); err != nil {
					logger.Warn("journal append failed", zap.Error(err))
				}
			}

			if err := b.HandleEvent(ctx, ev); err != nil {
				logger.Error("bridge failed, event dropped",
					zap.String("kind", string(ev.Kind)),
					zap.String("network", ev.Network),
					zap.String("tx", ev.TxHash),
					zap.Error(err),
				)
			}
		}
	}
}
