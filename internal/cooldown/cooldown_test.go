package cooldown

import (
	"fmt"
	"testing"
	"time"

	"gamevault.dev/mint-go/pkg/types"
)

func TestTracker(t *testing.T) {
	tracker := NewTracker(10, time.Hour)
	if _, ok := tracker.Get("0.0.1003"); ok {
		t.Errorf("empty tracker has an entry")
	}
	at := time.Unix(1700000000, 0)
	tracker.Set("0.0.1003", at)
	if got, ok := tracker.Get("0.0.1003"); !ok || !got.Equal(at) {
		t.Errorf("got (%v, %v), wanted (%v, true)", got, ok, at)
	}
	later := at.Add(time.Minute)
	tracker.Set("0.0.1003", later)
	if got, _ := tracker.Get("0.0.1003"); !got.Equal(later) {
		t.Errorf("overwrite: got %v, wanted %v", got, later)
	}
	if got, want := tracker.Len(), 1; got != want {
		t.Errorf("got %d entries, wanted %d", got, want)
	}
}

func TestTrackerCapacity(t *testing.T) {
	tracker := NewTracker(3, time.Hour)
	for i := 0; i < 5; i++ {
		tracker.Set(types.AccountID(fmt.Sprintf("0.0.%d", 1000+i)), time.Now())
	}
	if got, want := tracker.Len(), 3; got != want {
		t.Errorf("got %d entries, wanted %d", got, want)
	}
	if _, ok := tracker.Get("0.0.1000"); ok {
		t.Errorf("oldest entry not evicted")
	}
	if _, ok := tracker.Get("0.0.1004"); !ok {
		t.Errorf("newest entry evicted")
	}
}

func TestTrackerExpiry(t *testing.T) {
	tracker := NewTracker(10, 50*time.Millisecond)
	tracker.Set("0.0.1003", time.Now())
	time.Sleep(200 * time.Millisecond)
	if _, ok := tracker.Get("0.0.1003"); ok {
		t.Errorf("entry survived its ttl")
	}
}

func TestNewTrackerDefaultCapacity(t *testing.T) {
	tracker := NewTracker(0, time.Hour)
	for i := 0; i < 20; i++ {
		tracker.Set(types.AccountID(fmt.Sprintf("0.0.%d", i)), time.Now())
	}
	if got, want := tracker.Len(), 20; got != want {
		t.Errorf("got %d entries, wanted %d", got, want)
	}
}
