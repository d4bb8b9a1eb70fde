package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTTL_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTL[float64](time.Minute, clock)

	c.Set("BTCUSDT", 65000)
	if v, ok := c.Get("BTCUSDT"); !ok || v != 65000 {
		t.Fatalf("Get = %v, %v", v, ok)
	}

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("BTCUSDT"); !ok {
		t.Error("entry expired early")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("BTCUSDT"); ok {
		t.Error("entry still fresh at ttl")
	}
	if v, ok := c.GetStale("BTCUSDT"); !ok || v != 65000 {
		t.Errorf("GetStale = %v, %v", v, ok)
	}
}

func TestTTL_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTL[string](time.Minute, clock)

	c.Set("old", "a")
	clock.Advance(10 * time.Minute)
	c.Set("new", "b")

	if removed := c.Sweep(5 * time.Minute); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.GetStale("old"); ok {
		t.Error("old entry survived sweep")
	}
	if _, ok := c.GetStale("new"); !ok {
		t.Error("recent entry removed by sweep")
	}
}
