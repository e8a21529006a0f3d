package capture

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

func writeSyntheticPcap(t *testing.T, path string, n int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("write file header: %v", err)
	}

	eth := layers.Ethernet{EthernetType: layers.EthernetTypeIPv4}
	ip := layers.IPv4{Version: 4, IHL: 5, Protocol: layers.IPProtocolUDP, SrcIP: net.IPv4(10, 0, 0, 1), DstIP: net.IPv4(10, 0, 0, 2), TTL: 64}
	udp := layers.UDP{SrcPort: 1000, DstPort: 53}
	udp.SetNetworkLayerForChecksum(&ip)

	for i := 0; i < n; i++ {
		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
		if err := gopacket.SerializeLayers(buf, opts, &eth, &ip, &udp, gopacket.Payload([]byte("x"))); err != nil {
			t.Fatalf("serialize: %v", err)
		}
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(int64(i), 0),
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		if err := w.WritePacket(ci, buf.Bytes()); err != nil {
			t.Fatalf("write packet: %v", err)
		}
	}
}

func TestReaderIteratesAllPackets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synthetic.pcap")
	writeSyntheticPcap(t, path, 5)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		_, _, ok := r.Next()
		if !ok {
			break
		}
		count++
	}

	if count != 5 {
		t.Fatalf("read %d packets, want 5", count)
	}
	if r.Skipped() != 0 {
		t.Fatalf("skipped = %d, want 0", r.Skipped())
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist.pcap"))
	if !errors.Is(err, ErrInputUnreadable) {
		t.Fatalf("err = %v, want ErrInputUnreadable", err)
	}
}

func TestOpenUnrecognisedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pcap")
	if err := os.WriteFile(path, []byte("not a capture file"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Open(path)
	if !errors.Is(err, ErrInputUnreadable) {
		t.Fatalf("err = %v, want ErrInputUnreadable", err)
	}
}
