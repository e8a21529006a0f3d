package flowtable

import (
	"net"
	"strconv"
	"strings"

	"github.com/gigersam/nidspipe/internal/packet"
)

// Key is the canonical 5-tuple used to look up a flow direction-agnostically:
// the sorted endpoint-address pair, the sorted port pair, and the L4
// protocol. Swapping source and destination on any packet of the flow
// yields the same Key.
type Key struct {
	AddrA, AddrB string
	PortA, PortB uint16
	Proto        packet.Protocol
}

// String renders the key as the joined "flow_key" identification field of
// the Feature Record.
func (k Key) String() string {
	return strings.Join([]string{
		k.AddrA, k.AddrB,
		strconv.Itoa(int(k.PortA)), strconv.Itoa(int(k.PortB)),
		strconv.Itoa(int(k.Proto)),
	}, "_")
}

func newKey(srcIP, dstIP net.IP, srcPort, dstPort uint16, proto packet.Protocol) Key {
	a, b := normalizeIP(srcIP), normalizeIP(dstIP)
	pa, pb := srcPort, dstPort

	if a > b {
		a, b = b, a
	}
	if pa > pb {
		pa, pb = pb, pa
	}

	return Key{AddrA: a, AddrB: b, PortA: pa, PortB: pb, Proto: proto}
}

// normalizeIP collapses IPv4-in-IPv6 representations to their 4-byte form
// so the same address always hashes to the same string regardless of which
// layer decoded it.
func normalizeIP(ip net.IP) string {
	if v4 := ip.To4(); v4 != nil {
		return v4.String()
	}
	return ip.String()
}
