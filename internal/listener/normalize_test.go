package listener

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"stakecast/internal/contracts"
	"stakecast/internal/model"
)

var e18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(421614, "Arbitrum Sepolia", "TNST")
	if err != nil {
		t.Fatalf("new normalizer: %v", err)
	}
	return n
}

func stakingLog(t *testing.T, eventName string, user common.Address, amount *big.Int) types.Log {
	t.Helper()
	ab, err := contracts.StakingABI()
	if err != nil {
		t.Fatalf("staking abi: %v", err)
	}
	ev := ab.Events[eventName]
	data, err := ev.Inputs.NonIndexed().Pack(amount)
	if err != nil {
		t.Fatalf("pack %s: %v", eventName, err)
	}
	return types.Log{
		Topics: []common.Hash{ev.ID, common.BytesToHash(user.Bytes())},
		Data:   data,
		TxHash: common.HexToHash("0xaaa1"),
		Index:  7,
	}
}

func transferLog(t *testing.T, from, to common.Address, value *big.Int) types.Log {
	t.Helper()
	ab, err := contracts.TokenABI()
	if err != nil {
		t.Fatalf("token abi: %v", err)
	}
	ev := ab.Events["Transfer"]
	data, err := ev.Inputs.NonIndexed().Pack(value)
	if err != nil {
		t.Fatalf("pack Transfer: %v", err)
	}
	return types.Log{
		Topics: []common.Hash{ev.ID, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())},
		Data:   data,
		TxHash: common.HexToHash("0xbbb2"),
		Index:  3,
	}
}

func TestNormalizeStaked(t *testing.T) {
	n := newTestNormalizer(t)
	user := common.HexToAddress("0xabc0000000000000000000000000000000000001")
	amount := new(big.Int).Mul(big.NewInt(500), e18)

	ev, err := n.Normalize(stakingLog(t, "Staked", user, amount))
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	if ev.Kind != model.EventStakeEntered {
		t.Fatalf("kind mismatch: %s", ev.Kind)
	}
	if ev.ChainID != 421614 {
		t.Fatalf("chain id mismatch: %d", ev.ChainID)
	}
	if ev.Params["user"] != user.Hex() {
		t.Fatalf("user param mismatch: %q", ev.Params["user"])
	}
	if ev.Params["amount"] != amount.String() {
		t.Fatalf("amount param mismatch: %q", ev.Params["amount"])
	}
	if !strings.Contains(ev.Text, user.Hex()) {
		t.Fatalf("text missing user address: %q", ev.Text)
	}
	if !strings.Contains(ev.Text, "500") {
		t.Fatalf("text missing display amount: %q", ev.Text)
	}
	if strings.Contains(ev.Text, amount.String()) {
		t.Fatalf("text contains raw base units: %q", ev.Text)
	}
}

func TestNormalizeWithdrawn(t *testing.T) {
	n := newTestNormalizer(t)
	user := common.HexToAddress("0xabc0000000000000000000000000000000000002")
	amount := new(big.Int).Mul(big.NewInt(1000), e18)

	ev, err := n.Normalize(stakingLog(t, "Withdrawn", user, amount))
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	if ev.Kind != model.EventStakeExited {
		t.Fatalf("kind mismatch: %s", ev.Kind)
	}
	if !strings.Contains(ev.Text, "unstaked") {
		t.Fatalf("text should mention unstaked: %q", ev.Text)
	}
	if !strings.Contains(ev.Text, "1000") {
		t.Fatalf("text missing display amount: %q", ev.Text)
	}
}

func TestNormalizeTransfer(t *testing.T) {
	n := newTestNormalizer(t)
	from := common.HexToAddress("0xabc0000000000000000000000000000000000003")
	to := common.HexToAddress("0xabc0000000000000000000000000000000000004")
	value := new(big.Int).Mul(big.NewInt(25), e18)

	ev, err := n.Normalize(transferLog(t, from, to, value))
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	if ev.Kind != model.EventTokenTransfer {
		t.Fatalf("kind mismatch: %s", ev.Kind)
	}
	if ev.Params["from"] != from.Hex() || ev.Params["to"] != to.Hex() {
		t.Fatalf("address params mismatch: %+v", ev.Params)
	}
}

func TestNormalizeMint(t *testing.T) {
	n := newTestNormalizer(t)
	to := common.HexToAddress("0xabc0000000000000000000000000000000000005")
	value := new(big.Int).Mul(big.NewInt(77), e18)

	ev, err := n.Normalize(transferLog(t, common.Address{}, to, value))
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	if ev.Kind != model.EventTokenMinted {
		t.Fatalf("zero-address transfer should be a mint, got %s", ev.Kind)
	}
	if !strings.Contains(ev.Text, "Minted") {
		t.Fatalf("text should mention mint: %q", ev.Text)
	}
}

func TestNormalizeUnknownTopic(t *testing.T) {
	n := newTestNormalizer(t)
	lg := types.Log{Topics: []common.Hash{common.HexToHash("0xdead")}}
	if _, err := n.Normalize(lg); err == nil {
		t.Fatalf("expected error for unknown topic0")
	}
}
