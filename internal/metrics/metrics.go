// Package metrics exposes the socket core's statistics record (spec §3) as
// Prometheus collectors, modeled on quic-go/quic-go/metrics/tracer.go.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quicsocket"

// Collectors are the counters/gauges a Socket keeps up to date. They mirror
// the fixed-layout statistics record verbatim; the Socket's Stats record
// owns the source of truth and adds to these collectors in the same
// method that updates its own counter, so there is exactly one place per
// counter that increments it.
type Collectors struct {
	BytesReceived       prometheus.Counter
	BytesSent           prometheus.Counter
	PacketsReceived     prometheus.Counter
	PacketsSent         prometheus.Counter
	PacketsIgnored      prometheus.Counter
	ServerSessions      prometheus.Counter
	ClientSessions      prometheus.Counter
	StatelessResetCount prometheus.Counter

	ConnectionsPerHost prometheus.Gauge
}

// NewCollectors builds a Collectors and registers it with reg, attaching
// labels to every collector as constant labels. Registering twice against
// the same registerer (e.g. two Sockets in one process with the same
// labels) does not panic: the AlreadyRegisteredError is ignored, and the
// later instance's collectors are then not exported through reg.
func NewCollectors(reg prometheus.Registerer, labels prometheus.Labels) *Collectors {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	c := &Collectors{
		BytesReceived:       counter("bytes_received_total", "UDP payload bytes received"),
		BytesSent:           counter("bytes_sent_total", "UDP payload bytes sent"),
		PacketsReceived:     counter("packets_received_total", "datagrams accepted and delivered"),
		PacketsSent:         counter("packets_sent_total", "datagrams successfully transmitted"),
		PacketsIgnored:      counter("packets_ignored_total", "datagrams dropped before delivery"),
		ServerSessions:      counter("server_sessions_total", "server-role sessions created"),
		ClientSessions:      counter("client_sessions_total", "client-role sessions created"),
		StatelessResetCount: counter("stateless_resets_sent_total", "stateless reset packets emitted"),
		ConnectionsPerHost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "connections_per_host_max",
			Help:        "largest observed per-host active connection count",
			ConstLabels: labels,
		}),
	}
	for _, collector := range []prometheus.Collector{
		c.BytesReceived, c.BytesSent, c.PacketsReceived, c.PacketsSent,
		c.PacketsIgnored, c.ServerSessions, c.ClientSessions,
		c.StatelessResetCount, c.ConnectionsPerHost,
	} {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				panic(err)
			}
		}
	}
	return c
}
