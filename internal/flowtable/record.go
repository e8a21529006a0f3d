package flowtable

import (
	"net"
	"time"

	"github.com/gigersam/nidspipe/internal/packet"
)

// Direction classifies a packet relative to the flow's first packet.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// noInitWindow is the sentinel for "no SYN observed yet in this direction".
const noInitWindow = -1

// Endpoint is one side of a flow, exactly as seen on the wire.
type Endpoint struct {
	IP   net.IP
	Port uint16
}

// PacketSummary is the minimal per-packet footprint retained inside a Record:
// enough to recompute every feature, nothing more.
type PacketSummary struct {
	TS        time.Time
	Length    int
	Direction Direction
	Flags     packet.Flags
	HeaderLen int
	Window    uint16
}

// Record is a single in-flight (or just-finalised) bidirectional flow.
type Record struct {
	Key       Key
	Proto     packet.Protocol
	Initiator Endpoint // (src, sport) of the first packet; defines "forward"
	Responder Endpoint // (dst, dport) of the first packet

	StartTS, LastTS time.Time
	Packets         []PacketSummary

	InitWinFwd, InitWinBwd int

	activeHint bool
}

func newRecord(key Key, p packet.Packet) *Record {
	return &Record{
		Key:        key,
		Proto:      p.Protocol,
		Initiator:  Endpoint{IP: p.SrcIP, Port: p.SrcPort},
		Responder:  Endpoint{IP: p.DstIP, Port: p.DstPort},
		StartTS:    p.Timestamp,
		LastTS:     p.Timestamp,
		InitWinFwd: noInitWindow,
		InitWinBwd: noInitWindow,
		activeHint: true,
	}
}

// direction reports whether p matches this flow's initiator tuple in
// original order (forward) or not (backward).
func (r *Record) direction(p packet.Packet) Direction {
	if p.SrcIP.Equal(r.Initiator.IP) && p.SrcPort == r.Initiator.Port &&
		p.DstIP.Equal(r.Responder.IP) && p.DstPort == r.Responder.Port {
		return Forward
	}
	return Backward
}

// append adds p to the record, updating the last timestamp, storing a
// direction-tagged packet summary, and capturing the initial TCP window.
func (r *Record) append(p packet.Packet) {
	dir := r.direction(p)

	if p.Timestamp.After(r.LastTS) {
		r.LastTS = p.Timestamp
	}
	r.activeHint = true

	r.Packets = append(r.Packets, PacketSummary{
		TS:        p.Timestamp,
		Length:    p.TotalLen,
		Direction: dir,
		Flags:     p.TCPFlags,
		HeaderLen: p.HeaderLen(),
		Window:    p.TCPWindow,
	})

	if r.Proto != packet.ProtoTCP || !p.TCPFlags.Has(packet.FlagSYN) {
		return
	}
	if dir == Forward && r.InitWinFwd == noInitWindow {
		r.InitWinFwd = int(p.TCPWindow)
	} else if dir == Backward && r.InitWinBwd == noInitWindow {
		r.InitWinBwd = int(p.TCPWindow)
	}
}
