package listener

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"stakecast/internal/config"
	"stakecast/internal/model"
)

type fakeSub struct {
	errs chan error
}

func (s *fakeSub) Err() <-chan error { return s.errs }
func (s *fakeSub) Unsubscribe()      {}

type fakeClient struct {
	mu    sync.Mutex
	sinks []chan<- types.Log
	subs  []*fakeSub
}

func (c *fakeClient) SubscribeLogs(_ context.Context, _ ethereum.FilterQuery, sink chan<- types.Log) (ethereum.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, sink)
	sub := &fakeSub{errs: make(chan error, 1)}
	c.subs = append(c.subs, sub)
	return sub, nil
}

func (c *fakeClient) sink(i int) chan<- types.Log {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sinks[i]
}

func (c *fakeClient) sub(i int) *fakeSub {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs[i]
}

func testNetwork() config.Network {
	return config.Network{
		ChainID:        84532,
		Name:           "Base Sepolia",
		RPCURL:         "ws://localhost:8546",
		StakingAddress: "0x1000000000000000000000000000000000000001",
		TokenAddress:   "0x1000000000000000000000000000000000000002",
	}
}

func receiveEvent(t *testing.T, queue *Queue) model.ChainEvent {
	t.Helper()
	select {
	case ev := <-queue.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
		return model.ChainEvent{}
	}
}

func TestListenerNormalizesAndDeduplicates(t *testing.T) {
	client := &fakeClient{}
	normalizer := newTestNormalizer(t)
	queue := NewQueue(8, nil)

	l := NewListener(testNetwork(), client, normalizer, queue, nil)
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer l.Stop()

	client.mu.Lock()
	streams := len(client.sinks)
	client.mu.Unlock()
	if streams != 2 {
		t.Fatalf("expected one subscription per contract, got %d", streams)
	}

	user := common.HexToAddress("0xabc0000000000000000000000000000000000001")
	amount := new(big.Int).Mul(big.NewInt(500), e18)

	lg := stakingLog(t, "Staked", user, amount)
	client.sink(0) <- lg

	ev := receiveEvent(t, queue)
	if ev.Kind != model.EventStakeEntered {
		t.Fatalf("kind mismatch: %s", ev.Kind)
	}

	// Re-emission of the same log must not produce a second event.
	client.sink(0) <- lg

	second := stakingLog(t, "Staked", user, amount)
	second.TxHash = common.HexToHash("0xaaa2")
	client.sink(0) <- second

	ev2 := receiveEvent(t, queue)
	if ev2.TxHash != second.TxHash.Hex() {
		t.Fatalf("duplicate log should be dropped, got %s", ev2.TxHash)
	}
}

func TestListenerSkipsRemovedLogs(t *testing.T) {
	client := &fakeClient{}
	normalizer := newTestNormalizer(t)
	queue := NewQueue(8, nil)

	l := NewListener(testNetwork(), client, normalizer, queue, nil)
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer l.Stop()

	user := common.HexToAddress("0xabc0000000000000000000000000000000000001")
	removed := stakingLog(t, "Staked", user, big.NewInt(1))
	removed.Removed = true
	client.sink(0) <- removed

	ok := stakingLog(t, "Staked", user, big.NewInt(2))
	ok.TxHash = common.HexToHash("0xaaa3")
	client.sink(0) <- ok

	ev := receiveEvent(t, queue)
	if ev.TxHash != ok.TxHash.Hex() {
		t.Fatalf("reorg-removed log should be skipped, got %s", ev.TxHash)
	}
}

func TestListenerSubscriptionErrorLeavesSiblingRunning(t *testing.T) {
	client := &fakeClient{}
	normalizer := newTestNormalizer(t)
	queue := NewQueue(8, nil)

	l := NewListener(testNetwork(), client, normalizer, queue, nil)
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// The staking stream dies; the token stream must keep delivering.
	client.sub(0).errs <- errors.New("stream disconnected")

	from := common.HexToAddress("0xabc0000000000000000000000000000000000003")
	to := common.HexToAddress("0xabc0000000000000000000000000000000000004")
	client.sink(1) <- transferLog(t, from, to, new(big.Int).Mul(big.NewInt(25), e18))

	ev := receiveEvent(t, queue)
	if ev.Kind != model.EventTokenTransfer {
		t.Fatalf("sibling stream should keep delivering, got %s", ev.Kind)
	}

	stopped := make(chan struct{})
	go func() {
		l.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("stop did not return after a subscription error")
	}
}
