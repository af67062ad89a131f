package socket

import (
	"sync"

	"github.com/nodejs-quic/quicsocket/internal/protocol"
)

// unspecifiedLabel is the default diagnostic label of a Packet (spec §4.1).
const unspecifiedLabel = "unspecified"

// Packet is an owned, bounded byte buffer with a diagnostic label used
// for tracing outbound datagrams (C1). It is cheaply copyable: copying a
// Packet copies the header, not the backing array, so callers that need
// an independent buffer should call Clone.
type Packet struct {
	data  []byte
	label string
}

var packetBufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, protocol.MaxPacketSize)
		return &b
	},
}

// NewPacket returns a Packet backed by a buffer of capacity
// protocol.MaxPacketSize, with a logical length of length, labelled label.
// length must not exceed protocol.MaxPacketSize.
func NewPacket(label string, length int) *Packet {
	if length > protocol.MaxPacketSize {
		panic("socket: packet length exceeds MaxPacketSize")
	}
	if label == "" {
		label = unspecifiedLabel
	}
	buf := packetBufferPool.Get().(*[]byte)
	return &Packet{data: (*buf)[:length], label: label}
}

// Release returns the backing buffer to the pool. Callers must not use p
// after calling Release.
func (p *Packet) Release() {
	if p.data == nil {
		return
	}
	buf := p.data[:cap(p.data)]
	packetBufferPool.Put(&buf)
	p.data = nil
}

// Bytes exposes the packet's logical byte range for reading or writing in
// place.
func (p *Packet) Bytes() []byte { return p.data }

// Len returns the packet's current logical length.
func (p *Packet) Len() int { return len(p.data) }

// SetLen sets the logical length, which must not exceed the buffer's
// capacity (protocol.MaxPacketSize).
func (p *Packet) SetLen(n int) {
	if n > cap(p.data) {
		panic("socket: SetLen exceeds packet capacity")
	}
	p.data = p.data[:n]
}

// Label returns the packet's diagnostic label, defaulting to
// "unspecified".
func (p *Packet) Label() string {
	if p.label == "" {
		return unspecifiedLabel
	}
	return p.label
}

// Clone returns an independent copy of p backed by its own buffer.
func (p *Packet) Clone() *Packet {
	c := NewPacket(p.label, p.Len())
	copy(c.data, p.data)
	return c
}
