package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	udpHeaderLen  = 8
	icmpHeaderLen = 8 // ICMPv4/v6 type distinctions are not modeled; see design notes.
)

// Classify extracts a Packet from a decoded gopacket.Packet, or reports that
// the packet should be skipped: no IP layer, an unsupported L4 protocol, or
// a header too short to trust. It never panics on malformed input; a
// decoding problem is reported as skip, not an error, so a Capture Reader
// can keep iterating.
func Classify(pkt gopacket.Packet, ts gopacket.CaptureInfo) (Packet, bool) {
	netLayer := pkt.NetworkLayer()
	if netLayer == nil {
		return Packet{}, true
	}

	var out Packet
	out.Timestamp = ts.Timestamp

	switch l := netLayer.(type) {
	case *layers.IPv4:
		out.SrcIP = l.SrcIP
		out.DstIP = l.DstIP
		out.IPHeaderLen = int(l.IHL) * 4
		out.TotalLen = int(l.Length)
		out.Protocol = Protocol(l.Protocol)
	case *layers.IPv6:
		out.SrcIP = l.SrcIP
		out.DstIP = l.DstIP
		out.IPHeaderLen = 40
		out.TotalLen = int(l.Length) + 40
		out.Protocol = Protocol(l.NextHeader)
	default:
		return Packet{}, true
	}

	switch out.Protocol {
	case ProtoTCP:
		tcp, ok := pkt.TransportLayer().(*layers.TCP)
		if !ok {
			return Packet{}, true
		}
		out.SrcPort = uint16(tcp.SrcPort)
		out.DstPort = uint16(tcp.DstPort)
		out.L4HeaderLen = int(tcp.DataOffset) * 4
		out.TCPWindow = tcp.Window
		out.TCPFlags = tcpFlags(tcp)
	case ProtoUDP:
		udp, ok := pkt.TransportLayer().(*layers.UDP)
		if !ok {
			return Packet{}, true
		}
		out.SrcPort = uint16(udp.SrcPort)
		out.DstPort = uint16(udp.DstPort)
		out.L4HeaderLen = udpHeaderLen
	case ProtoICMP:
		out.SrcPort, out.DstPort = 0, 0
		out.L4HeaderLen = icmpHeaderLen
	default:
		return Packet{}, true
	}

	return out, false
}

func tcpFlags(tcp *layers.TCP) Flags {
	var f Flags
	if tcp.FIN {
		f |= FlagFIN
	}
	if tcp.SYN {
		f |= FlagSYN
	}
	if tcp.RST {
		f |= FlagRST
	}
	if tcp.PSH {
		f |= FlagPSH
	}
	if tcp.ACK {
		f |= FlagACK
	}
	if tcp.URG {
		f |= FlagURG
	}
	return f
}
