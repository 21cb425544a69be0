package listener

import (
	"sync/atomic"

	"go.uber.org/zap"

	"stakecast/internal/model"
)

// Queue is the bounded hand-off between the listeners and the bridge.
// When full, new events are dropped (drop-newest) rather than blocking
// the log subscriptions.
type Queue struct {
	ch      chan model.ChainEvent
	logger  *zap.Logger
	dropped atomic.Uint64
}

func NewQueue(size int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{ch: make(chan model.ChainEvent, size), logger: logger}
}

// Push enqueues an event, reporting false when the queue is full.
func (q *Queue) Push(ev model.ChainEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		dropped := q.dropped.Add(1)
		q.logger.Warn("event queue full, dropping event",
			zap.String("kind", string(ev.Kind)),
			zap.String("network", ev.Network),
			zap.Uint64("dropped_total", dropped),
		)
		return false
	}
}

// Events returns the consumer side of the queue.
func (q *Queue) Events() <-chan model.ChainEvent {
	return q.ch
}

// Dropped returns the count of events dropped on overflow.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Close closes the queue. Call only after all producers have stopped.
func (q *Queue) Close() {
	close(q.ch)
}
