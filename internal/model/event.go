package model

// EventKind labels a normalized chain event.
type EventKind string

const (
	EventStakeEntered  EventKind = "stake-entered"
	EventStakeExited   EventKind = "stake-exited"
	EventTokenTransfer EventKind = "token-transfer"
	EventTokenMinted   EventKind = "token-minted"
)

// ChainEvent is the normalized form of a raw contract log, ready for
// display. It is ephemeral and never persisted beyond the optional journal.
type ChainEvent struct {
	Kind     EventKind         `json:"kind"`
	ChainID  uint64            `json:"chain_id"`
	Network  string            `json:"network"`
	TxHash   string            `json:"tx_hash"`
	LogIndex uint64            `json:"log_index"`
	Params   map[string]string `json:"params"`
	Text     string            `json:"text"`
}
