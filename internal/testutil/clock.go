package testutil

import (
	"sync"
	"time"
)

// FixedClock hands out deterministic createdAt timestamps for tests.
// Each call to Next advances by one second from a fixed epoch, so a
// test scenario always produces the same transaction hashes.
//
// Thread-safety: all methods are safe for concurrent use.
type FixedClock struct {
	mu    sync.Mutex
	epoch time.Time
	steps int64
}

// NewFixedClock creates a clock starting at the given epoch. The first
// call to Next returns the epoch itself.
func NewFixedClock(epoch time.Time) *FixedClock {
	return &FixedClock{epoch: epoch.UTC()}
}

// Next returns the next timestamp: epoch + one second per prior call.
func (c *FixedClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.epoch.Add(time.Duration(c.steps) * time.Second)
	c.steps++
	return t
}

// Reset rewinds the clock to the epoch for test reuse.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = 0
}

// FixedUIDs hands out uids from a fixed list, so created entities get
// stable identifiers and transactions hash identically across runs.
type FixedUIDs struct {
	mu   sync.Mutex
	uids []string
	next int
}

// NewFixedUIDs creates a generator over the given uids. It panics when
// exhausted: a test asking for more uids than it declared is broken.
func NewFixedUIDs(uids ...string) *FixedUIDs {
	return &FixedUIDs{uids: uids}
}

// Next returns the next uid from the list.
func (g *FixedUIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next >= len(g.uids) {
		panic("FixedUIDs exhausted")
	}
	uid := g.uids[g.next]
	g.next++
	return uid
}
