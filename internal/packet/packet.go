// Package packet defines the wire-level packet representation consumed by
// the flow table and the per-packet classifier that produces it.
package packet

import (
	"net"
	"time"
)

// Protocol is the IANA L4 protocol number. Only the protocols the flow
// pipeline understands are named; anything else is classified as skipped
// before a Packet is ever constructed.
type Protocol uint8

const (
	ProtoICMP Protocol = 1
	ProtoTCP  Protocol = 6
	ProtoUDP  Protocol = 17
)

func (p Protocol) String() string {
	switch p {
	case ProtoICMP:
		return "ICMP"
	case ProtoTCP:
		return "TCP"
	case ProtoUDP:
		return "UDP"
	default:
		return "unknown"
	}
}

// Flags is the subset of TCP control bits the pipeline cares about, packed
// into a bitset so a flow can accumulate flag counts with a simple OR/AND.
type Flags uint8

const (
	FlagFIN Flags = 1 << iota
	FlagSYN
	FlagRST
	FlagPSH
	FlagACK
	FlagURG
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Packet is the ephemeral, per-datagram record the classifier hands to the
// flow table. No payload is retained, only the header-derived fields the
// feature schema needs.
type Packet struct {
	Timestamp time.Time
	Protocol  Protocol

	SrcIP, DstIP     net.IP
	SrcPort, DstPort uint16

	// IPHeaderLen and L4HeaderLen are measured in bytes; HeaderLen is their sum.
	IPHeaderLen int
	L4HeaderLen int

	// TotalLen is the total IP packet length (header + payload) as carried
	// by the IP header, not the on-wire capture length.
	TotalLen int

	TCPFlags Flags

	// TCPWindow is the TCP receive window advertised by this packet. It is
	// meaningless (and left at zero) for non-TCP packets.
	TCPWindow uint16
}

// HeaderLen is the combined IP + L4 header length, per the feature schema's
// fwd/bwd_header_len fields.
func (p Packet) HeaderLen() int {
	return p.IPHeaderLen + p.L4HeaderLen
}

// PayloadLen is the non-negative payload length, tolerating malformed
// packets whose declared header length exceeds the declared total length.
func (p Packet) PayloadLen() int {
	if v := p.TotalLen - p.HeaderLen(); v > 0 {
		return v
	}
	return 0
}
