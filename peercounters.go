package socket

import "net/netip"

// peerCounters tracks the two per-peer admission counters keyed by IP
// address only, port excluded (C4, spec §4.4, and design note "IP-only vs
// full-tuple keying" in spec §9: a NAT may share one counter across
// several peers behind it, which is accepted).
type peerCounters struct {
	addrCounts  map[netip.Addr]uint64
	resetCounts map[netip.Addr]uint64
}

func newPeerCounters() *peerCounters {
	return &peerCounters{
		addrCounts:  make(map[netip.Addr]uint64),
		resetCounts: make(map[netip.Addr]uint64),
	}
}

func (c *peerCounters) connections(addr netip.Addr) uint64 { return c.addrCounts[addr] }

func (c *peerCounters) resets(addr netip.Addr) uint64 { return c.resetCounts[addr] }

// incrConnections increments the connection count for addr and returns
// the new value, so callers can feed a running per-host high-water mark
// (e.g. the connections_per_host_max gauge) without a second map lookup.
func (c *peerCounters) incrConnections(addr netip.Addr) uint64 {
	c.addrCounts[addr]++
	return c.addrCounts[addr]
}

func (c *peerCounters) decrConnections(addr netip.Addr) {
	if n := c.addrCounts[addr]; n <= 1 {
		delete(c.addrCounts, addr)
	} else {
		c.addrCounts[addr] = n - 1
	}
}

func (c *peerCounters) incrResets(addr netip.Addr) {
	c.resetCounts[addr]++
}
