// Package cooldown tracks the time of the last successful mint per
// account.
package cooldown

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"gamevault.dev/mint-go/pkg/types"
)

// DefaultCapacity bounds the number of tracked accounts.
const DefaultCapacity = 100000

// Tracker is safe for concurrent use. Entries are dropped once they are
// older than the ttl, or when capacity is exceeded, least recently used
// first. An evicted entry behaves as if the account never minted.
type Tracker struct {
	entries *expirable.LRU[types.AccountID, time.Time]
}

// NewTracker creates a tracker holding at most capacity accounts. The ttl
// should be at least the cooldown window; entries older than that carry
// no information.
func NewTracker(capacity int, ttl time.Duration) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{entries: expirable.NewLRU[types.AccountID, time.Time](capacity, nil, ttl)}
}

// Get returns the time of the last recorded mint for id.
func (t *Tracker) Get(id types.AccountID) (time.Time, bool) {
	return t.entries.Get(id)
}

func (t *Tracker) Set(id types.AccountID, at time.Time) {
	t.entries.Add(id, at)
}

func (t *Tracker) Len() int {
	return t.entries.Len()
}
