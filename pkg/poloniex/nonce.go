package poloniex

import (
	"sync"
	"time"
)

// NonceCounter issues strictly increasing nonces for signed requests.
// Each client owns its own counter, seeded from the current millisecond
// timestamp so values stay monotonic across process restarts. The
// exchange rejects any nonce that is not greater than the last one it saw
// for the key.
type NonceCounter struct {
	mu   sync.Mutex
	last int64
}

// NewNonceCounter returns a counter seeded from the current time.
func NewNonceCounter() *NonceCounter {
	return &NonceCounter{last: time.Now().UnixMilli()}
}

// Next returns the next nonce. Safe for concurrent use; concurrent
// callers serialize here so no value repeats or decreases.
func (n *NonceCounter) Next() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.last++
	return n.last
}

// Reset reseeds the counter from the current time, keeping monotonicity
// if the clock has not gone backwards past the last issued value.
func (n *NonceCounter) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if now := time.Now().UnixMilli(); now > n.last {
		n.last = now
	}
}
