package listener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"stakecast/internal/config"
)

const (
	logSinkBuffer     = 64
	subscribeAttempts = 4
	subscribeBackoff  = 500 * time.Millisecond
)

// LogSubscriber is the part of the chain client the listener needs.
type LogSubscriber interface {
	SubscribeLogs(ctx context.Context, query ethereum.FilterQuery, sink chan<- types.Log) (ethereum.Subscription, error)
}

// Listener attaches live log subscriptions for one network and feeds
// normalized events into the queue. A subscription error ends that
// stream only; sibling streams and the process keep running.
type Listener struct {
	network    config.Network
	client     LogSubscriber
	normalizer *Normalizer
	queue      *Queue
	dedupe     *dedupe
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	subs   []ethereum.Subscription
}

func NewListener(network config.Network, client LogSubscriber, normalizer *Normalizer, queue *Queue, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		network:    network,
		client:     client,
		normalizer: normalizer,
		queue:      queue,
		dedupe:     newDedupe(0),
		logger:     logger.With(zap.String("network", network.Name)),
	}
}

// Start attaches one subscription per monitored contract.
func (l *Listener) Start(ctx context.Context) error {
	if l.client == nil {
		return fmt.Errorf("chain client is nil")
	}
	if l.queue == nil {
		return fmt.Errorf("queue is nil")
	}

	ctx, l.cancel = context.WithCancel(ctx)

	streams := []struct {
		name  string
		query ethereum.FilterQuery
	}{
		{
			name: "staking",
			query: ethereum.FilterQuery{
				Addresses: []common.Address{common.HexToAddress(l.network.StakingAddress)},
				Topics:    [][]common.Hash{l.normalizer.StakingTopics()},
			},
		},
		{
			name: "token",
			query: ethereum.FilterQuery{
				Addresses: []common.Address{common.HexToAddress(l.network.TokenAddress)},
				Topics:    [][]common.Hash{l.normalizer.TokenTopics()},
			},
		},
	}

	for _, stream := range streams {
		sink := make(chan types.Log, logSinkBuffer)
		var sub ethereum.Subscription
		err := retry(ctx, subscribeAttempts, subscribeBackoff, func(ctx context.Context) error {
			var err error
			sub, err = l.client.SubscribeLogs(ctx, stream.query, sink)
			if err != nil {
				l.logger.Warn("subscribe failed", zap.String("stream", stream.name), zap.Error(err))
			}
			return err
		})
		if err != nil {
			l.Stop()
			return fmt.Errorf("subscribe %s logs on %s: %w", stream.name, l.network.Name, err)
		}
		l.subs = append(l.subs, sub)

		l.wg.Add(1)
		go l.consume(ctx, stream.name, sub, sink)
	}

	l.logger.Info("attached log subscriptions", zap.Int("streams", len(streams)))
	return nil
}

// Stop unsubscribes all streams and waits for their consumers.
func (l *Listener) Stop() {
	for _, sub := range l.subs {
		sub.Unsubscribe()
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}

func (l *Listener) consume(ctx context.Context, stream string, sub ethereum.Subscription, sink <-chan types.Log) {
	defer l.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			if err != nil {
				l.logger.Error("subscription terminated", zap.String("stream", stream), zap.Error(err))
			}
			return
		case lg := <-sink:
			l.handleLog(lg)
		}
	}
}

func (l *Listener) handleLog(lg types.Log) {
	if lg.Removed {
		return
	}

	ev, err := l.normalizer.Normalize(lg)
	if err != nil {
		l.logger.Warn("skip undecodable log",
			zap.String("tx", lg.TxHash.Hex()),
			zap.Uint64("log_index", uint64(lg.Index)),
			zap.Error(err),
		)
		return
	}

	if l.dedupe.Seen(ev.ChainID, ev.TxHash, ev.LogIndex) {
		l.logger.Debug("duplicate event dropped",
			zap.String("tx", ev.TxHash),
			zap.Uint64("log_index", ev.LogIndex),
		)
		return
	}

	l.queue.Push(ev)
	l.logger.Info("chain event",
		zap.String("kind", string(ev.Kind)),
		zap.String("tx", ev.TxHash),
	)
}
