package packet

import (
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

func buildTCP(t *testing.T, syn, ack bool, window uint16) gopacket.Packet {
	t.Helper()

	eth := layers.Ethernet{EthernetType: layers.EthernetTypeIPv4}
	ip := layers.IPv4{
		Version:  4,
		IHL:      5,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IPv4(10, 0, 0, 1),
		DstIP:    net.IPv4(10, 0, 0, 2),
		TTL:      64,
	}
	tcp := layers.TCP{
		SrcPort: 1000,
		DstPort: 80,
		SYN:     syn,
		ACK:     ack,
		Window:  window,
		DataOffset: 5,
	}
	tcp.SetNetworkLayerForChecksum(&ip)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &ip, &tcp, gopacket.Payload([]byte("hi"))); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	return gopacket.NewPacket(buf.Bytes(), layers.LayerTypeEthernet, gopacket.Default)
}

func TestClassifyTCP(t *testing.T) {
	pkt := buildTCP(t, true, false, 1024)
	ci := gopacket.CaptureInfo{Timestamp: time.Unix(0, 0)}

	p, skip := Classify(pkt, ci)
	if skip {
		t.Fatal("expected classification, got skip")
	}
	if p.Protocol != ProtoTCP {
		t.Fatalf("protocol = %v, want TCP", p.Protocol)
	}
	if p.SrcPort != 1000 || p.DstPort != 80 {
		t.Fatalf("ports = %d/%d", p.SrcPort, p.DstPort)
	}
	if !p.TCPFlags.Has(FlagSYN) {
		t.Fatal("expected SYN flag set")
	}
	if p.TCPFlags.Has(FlagACK) {
		t.Fatal("did not expect ACK flag set")
	}
	if p.TCPWindow != 1024 {
		t.Fatalf("window = %d, want 1024", p.TCPWindow)
	}
	if p.IPHeaderLen != 20 || p.L4HeaderLen != 20 {
		t.Fatalf("header lens = %d/%d, want 20/20", p.IPHeaderLen, p.L4HeaderLen)
	}
	if p.PayloadLen() != 2 {
		t.Fatalf("payload len = %d, want 2", p.PayloadLen())
	}
}

func TestClassifyNonIP(t *testing.T) {
	eth := layers.Ethernet{EthernetType: layers.EthernetTypeARP}
	arp := layers.ARP{
		AddrType:      layers.LinkTypeEthernet,
		Protocol:      layers.EthernetTypeIPv4,
		HwAddressSize: 6,
		ProtAddressSize: 4,
		Operation:     layers.ARPRequest,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	pkt := gopacket.NewPacket(buf.Bytes(), layers.LayerTypeEthernet, gopacket.Default)

	_, skip := Classify(pkt, gopacket.CaptureInfo{})
	if !skip {
		t.Fatal("expected ARP packet to be skipped")
	}
}
