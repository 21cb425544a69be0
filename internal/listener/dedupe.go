package listener

import (
	"fmt"
	"sync"
)

const defaultDedupeCap = 4096

// dedupe tracks recently seen (chain, tx, log index) keys so provider
// reconnects and re-emissions do not produce duplicate notifications.
// The set is reset once it grows past its cap.
type dedupe struct {
	mu   sync.Mutex
	max  int
	seen map[string]struct{}
}

func newDedupe(max int) *dedupe {
	if max <= 0 {
		max = defaultDedupeCap
	}
	return &dedupe{max: max, seen: make(map[string]struct{})}
}

// Seen records the key and reports whether it was already present.
func (d *dedupe) Seen(chainID uint64, txHash string, logIndex uint64) bool {
	key := fmt.Sprintf("%d:%s:%d", chainID, txHash, logIndex)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if len(d.seen) >= d.max {
		d.seen = make(map[string]struct{}, d.max)
	}
	d.seen[key] = struct{}{}
	return false
}
