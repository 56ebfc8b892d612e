package rateLimit

import (
	"sync"
)

// A synchronized map of access counts.
type accessCounts struct {
	// Protects the counts mapping.
	sync.Mutex
	counts map[string]int
}

func (c *accessCounts) GetAccessCount(key string) int {
	c.Lock()
	defer c.Unlock()
	return c.counts[key]
}

// AccessAllowed increments the count for key, unless it has already
// reached the limit.
func (c *accessCounts) AccessAllowed(key string, limit int) bool {
	c.Lock()
	defer c.Unlock()
	if c.counts[key] >= limit {
		return false
	}
	c.counts[key]++
	return true
}

func (c *accessCounts) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.counts)
}

func (c *accessCounts) Reset() {
	c.Lock()
	defer c.Unlock()
	c.counts = make(map[string]int)
}
