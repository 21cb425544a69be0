package listener

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"stakecast/internal/contracts"
	"stakecast/internal/model"
)

// tokenDecimals is the display conversion for amounts; the staking token
// uses the standard 18 decimals.
const tokenDecimals = 18

// Normalizer decodes raw contract logs for one network into normalized
// chain events with a rendered text body.
type Normalizer struct {
	chainID uint64
	network string
	symbol  string

	stakingABI abi.ABI
	tokenABI   abi.ABI

	stakedTopic    common.Hash
	withdrawnTopic common.Hash
	transferTopic  common.Hash
}

func NewNormalizer(chainID uint64, network, symbol string) (*Normalizer, error) {
	stakingABI, err := contracts.StakingABI()
	if err != nil {
		return nil, fmt.Errorf("parse staking abi: %w", err)
	}
	tokenABI, err := contracts.TokenABI()
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}

	return &Normalizer{
		chainID:        chainID,
		network:        network,
		symbol:         symbol,
		stakingABI:     stakingABI,
		tokenABI:       tokenABI,
		stakedTopic:    stakingABI.Events["Staked"].ID,
		withdrawnTopic: stakingABI.Events["Withdrawn"].ID,
		transferTopic:  tokenABI.Events["Transfer"].ID,
	}, nil
}

// StakingTopics returns the topic0 filters for the staking contract stream.
func (n *Normalizer) StakingTopics() []common.Hash {
	return []common.Hash{n.stakedTopic, n.withdrawnTopic}
}

// TokenTopics returns the topic0 filters for the token contract stream.
func (n *Normalizer) TokenTopics() []common.Hash {
	return []common.Hash{n.transferTopic}
}

// Normalize converts a raw log into a chain event. Logs with an unknown
// topic0 or an undecodable payload return an error and are skipped upstream.
func (n *Normalizer) Normalize(lg types.Log) (model.ChainEvent, error) {
	if len(lg.Topics) == 0 {
		return model.ChainEvent{}, fmt.Errorf("log has no topics")
	}

	switch lg.Topics[0] {
	case n.stakedTopic:
		return n.normalizeStaking(lg, "Staked", model.EventStakeEntered)
	case n.withdrawnTopic:
		return n.normalizeStaking(lg, "Withdrawn", model.EventStakeExited)
	case n.transferTopic:
		return n.normalizeTransfer(lg)
	default:
		return model.ChainEvent{}, fmt.Errorf("unknown topic0: %s", lg.Topics[0].Hex())
	}
}

func (n *Normalizer) normalizeStaking(lg types.Log, eventName string, kind model.EventKind) (model.ChainEvent, error) {
	if len(lg.Topics) < 2 {
		return model.ChainEvent{}, fmt.Errorf("%s log missing user topic", eventName)
	}
	user := common.BytesToAddress(lg.Topics[1].Bytes())

	amount, err := unpackAmount(n.stakingABI, eventName, lg.Data)
	if err != nil {
		return model.ChainEvent{}, err
	}

	verb := "staked"
	if kind == model.EventStakeExited {
		verb = "unstaked"
	}

	ev := n.newEvent(kind, lg)
	ev.Params = map[string]string{
		"user":   user.Hex(),
		"amount": amount.String(),
	}
	ev.Text = fmt.Sprintf("User %s %s %s %s on %s",
		user.Hex(), verb, FormatUnits(amount, tokenDecimals), n.symbol, n.network)
	return ev, nil
}

func (n *Normalizer) normalizeTransfer(lg types.Log) (model.ChainEvent, error) {
	if len(lg.Topics) < 3 {
		return model.ChainEvent{}, fmt.Errorf("Transfer log missing address topics")
	}
	from := common.BytesToAddress(lg.Topics[1].Bytes())
	to := common.BytesToAddress(lg.Topics[2].Bytes())

	value, err := unpackAmount(n.tokenABI, "Transfer", lg.Data)
	if err != nil {
		return model.ChainEvent{}, err
	}

	display := FormatUnits(value, tokenDecimals)

	kind := model.EventTokenTransfer
	text := fmt.Sprintf("Transferred %s %s from %s to %s on %s",
		display, n.symbol, from.Hex(), to.Hex(), n.network)
	if from == (common.Address{}) {
		kind = model.EventTokenMinted
		text = fmt.Sprintf("Minted %s %s to %s on %s",
			display, n.symbol, to.Hex(), n.network)
	}

	ev := n.newEvent(kind, lg)
	ev.Params = map[string]string{
		"from":  from.Hex(),
		"to":    to.Hex(),
		"value": value.String(),
	}
	ev.Text = text
	return ev, nil
}

func (n *Normalizer) newEvent(kind model.EventKind, lg types.Log) model.ChainEvent {
	return model.ChainEvent{
		Kind:     kind,
		ChainID:  n.chainID,
		Network:  n.network,
		TxHash:   lg.TxHash.Hex(),
		LogIndex: uint64(lg.Index),
	}
}

func unpackAmount(contractABI abi.ABI, eventName string, data []byte) (*big.Int, error) {
	vals, err := contractABI.Unpack(eventName, data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", eventName, err)
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("unpack %s: expected one value, got %d", eventName, len(vals))
	}
	amount, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unpack %s: amount is not a big.Int", eventName)
	}
	return amount, nil
}
