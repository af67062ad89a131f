package socket

import (
	"sync/atomic"
	"time"

	"github.com/nodejs-quic/quicsocket/internal/metrics"
)

// Stats is the read-only, fixed-layout statistics record from spec §3, in
// the order the spec lists it. Values are read via the accessor methods,
// which load atomically; the Socket is the sole writer.
type Stats struct {
	createdAt  time.Time
	boundAt    atomic.Int64 // UnixNano, 0 until bound
	listenAt   atomic.Int64 // UnixNano, 0 until listening

	bytesReceived       atomic.Uint64
	bytesSent           atomic.Uint64
	packetsReceived     atomic.Uint64
	packetsSent         atomic.Uint64
	packetsIgnored      atomic.Uint64
	serverSessions      atomic.Uint64
	// clientSessions stays zero for the lifetime of a Socket: this core only
	// ever plays the server role in accept_initial. The field is still part
	// of the fixed-layout record because the statistics array's shape is
	// shared with the client-role core (spec §3), not because anything here
	// increments it.
	clientSessions      atomic.Uint64
	statelessResetCount atomic.Uint64

	connectionsPerHostMax atomic.Uint64

	collectors *metrics.Collectors
}

func newStats(collectors *metrics.Collectors) *Stats {
	return &Stats{createdAt: time.Now(), collectors: collectors}
}

// CreatedAt returns the time the Socket was constructed.
func (s *Stats) CreatedAt() time.Time { return s.createdAt }

// BoundAt returns the time the first endpoint bound, or the zero Time.
func (s *Stats) BoundAt() time.Time { return unixNanoOrZero(s.boundAt.Load()) }

// ListenAt returns the time Listen was called, or the zero Time.
func (s *Stats) ListenAt() time.Time { return unixNanoOrZero(s.listenAt.Load()) }

func unixNanoOrZero(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (s *Stats) BytesReceived() uint64       { return s.bytesReceived.Load() }
func (s *Stats) BytesSent() uint64           { return s.bytesSent.Load() }
func (s *Stats) PacketsReceived() uint64     { return s.packetsReceived.Load() }
func (s *Stats) PacketsSent() uint64         { return s.packetsSent.Load() }
func (s *Stats) PacketsIgnored() uint64      { return s.packetsIgnored.Load() }
func (s *Stats) ServerSessions() uint64      { return s.serverSessions.Load() }
func (s *Stats) ClientSessions() uint64      { return s.clientSessions.Load() }
func (s *Stats) StatelessResetCount() uint64 { return s.statelessResetCount.Load() }

// Snapshot returns the statistics record as a fixed-order slice of
// counters, matching spec §6 ("Statistics are exposed as a read-only
// fixed-layout array of u64 counters in the order listed in §3").
func (s *Stats) Snapshot() [8]uint64 {
	return [8]uint64{
		s.bytesReceived.Load(),
		s.bytesSent.Load(),
		s.packetsReceived.Load(),
		s.packetsSent.Load(),
		s.packetsIgnored.Load(),
		s.serverSessions.Load(),
		s.clientSessions.Load(),
		s.statelessResetCount.Load(),
	}
}

func (s *Stats) markBound() {
	s.boundAt.CompareAndSwap(0, time.Now().UnixNano())
}

func (s *Stats) markListening() {
	s.listenAt.Store(time.Now().UnixNano())
}

func (s *Stats) addBytesReceived(n int) {
	s.bytesReceived.Add(uint64(n))
	if s.collectors != nil {
		s.collectors.BytesReceived.Add(float64(n))
	}
}

func (s *Stats) addBytesSent(n int) {
	s.bytesSent.Add(uint64(n))
	if s.collectors != nil {
		s.collectors.BytesSent.Add(float64(n))
	}
}

func (s *Stats) incrPacketsReceived() {
	s.packetsReceived.Add(1)
	if s.collectors != nil {
		s.collectors.PacketsReceived.Inc()
	}
}

func (s *Stats) incrPacketsSent() {
	s.packetsSent.Add(1)
	if s.collectors != nil {
		s.collectors.PacketsSent.Inc()
	}
}

func (s *Stats) incrPacketsIgnored() {
	s.packetsIgnored.Add(1)
	if s.collectors != nil {
		s.collectors.PacketsIgnored.Inc()
	}
}

func (s *Stats) incrServerSessions() {
	s.serverSessions.Add(1)
	if s.collectors != nil {
		s.collectors.ServerSessions.Inc()
	}
}

// observeConnectionsPerHost feeds the running per-host high-water mark
// (the connections_per_host_max gauge) with the count for whichever host
// just changed. It only ever moves the gauge upward, matching the
// "largest observed" semantics in its Help text.
func (s *Stats) observeConnectionsPerHost(current uint64) {
	for {
		max := s.connectionsPerHostMax.Load()
		if current <= max {
			return
		}
		if s.connectionsPerHostMax.CompareAndSwap(max, current) {
			if s.collectors != nil {
				s.collectors.ConnectionsPerHost.Set(float64(current))
			}
			return
		}
	}
}

func (s *Stats) incrStatelessResetCount() {
	s.statelessResetCount.Add(1)
	if s.collectors != nil {
		s.collectors.StatelessResetCount.Inc()
	}
}
