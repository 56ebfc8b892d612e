package rateLimit

import (
	"testing"
)

func TestAccessAllowed(t *testing.T) {
	m := accessCounts{}
	m.Reset()

	checkCount := func(key string, expected int) {
		if c := m.GetAccessCount(key); c != expected {
			t.Errorf("expected access count (%q) = %d, got %d",
				key, expected, c)
		}
	}
	checkAccess := func(desc, key string, limit int, expected bool) {
		if res := m.AccessAllowed(key, limit); res != expected {
			t.Errorf("%v: unexpected access (%q, %d), got %v, expected %v, count = %d",
				desc, key, limit, res, expected, m.GetAccessCount(key))
		}
	}
	checkCount("192.0.2.1", 0)
	checkAccess("first", "192.0.2.1", 2, true)
	checkCount("192.0.2.1", 1)
	checkAccess("second", "192.0.2.1", 2, true)
	checkAccess("third", "192.0.2.1", 2, false)
	checkCount("192.0.2.1", 2)

	checkCount("192.0.2.2", 0)
	checkAccess("other address", "192.0.2.2", 2, true)

	m.Reset()
	checkCount("192.0.2.1", 0)
	if got := m.Len(); got != 0 {
		t.Errorf("got %d keys after reset, expected 0", got)
	}
}
