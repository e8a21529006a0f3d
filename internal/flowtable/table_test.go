package flowtable

import (
	"net"
	"testing"
	"time"

	"github.com/gigersam/nidspipe/internal/packet"
)

func pkt(ts time.Time, src net.IP, sport uint16, dst net.IP, dport uint16, length int, flags packet.Flags, win uint16) packet.Packet {
	return packet.Packet{
		Timestamp:   ts,
		Protocol:    packet.ProtoTCP,
		SrcIP:       src,
		DstIP:       dst,
		SrcPort:     sport,
		DstPort:     dport,
		IPHeaderLen: 20,
		L4HeaderLen: 20,
		TotalLen:    length,
		TCPFlags:    flags,
		TCPWindow:   win,
	}
}

func TestCanonicalKeySameFlowBothDirections(t *testing.T) {
	a := net.IPv4(10, 0, 0, 1)
	b := net.IPv4(10, 0, 0, 2)

	base := time.Unix(0, 0)
	tbl := New(0)

	tbl.Upsert(pkt(base, a, 1000, b, 80, 60, packet.FlagSYN, 1024))
	tbl.Upsert(pkt(base.Add(10*time.Millisecond), b, 80, a, 1000, 60, packet.FlagSYN|packet.FlagACK, 2048))

	if tbl.Len() != 1 {
		t.Fatalf("flows = %d, want 1", tbl.Len())
	}

	for _, rec := range tbl.Drain() {
		if len(rec.Packets) != 2 {
			t.Fatalf("packets = %d, want 2", len(rec.Packets))
		}
		if rec.Packets[0].Direction != Forward {
			t.Fatal("first packet should be forward")
		}
		if rec.Packets[1].Direction != Backward {
			t.Fatal("second packet should be backward (reverse 5-tuple)")
		}
		if rec.InitWinFwd != 1024 || rec.InitWinBwd != 2048 {
			t.Fatalf("init windows = %d/%d, want 1024/2048", rec.InitWinFwd, rec.InitWinBwd)
		}
	}
}

func TestNoSYNLeavesInitWindowSentinel(t *testing.T) {
	a := net.IPv4(10, 0, 0, 1)
	b := net.IPv4(10, 0, 0, 2)

	tbl := New(0)
	tbl.Upsert(pkt(time.Unix(0, 0), a, 1000, b, 80, 60, packet.FlagACK, 1024))

	for _, rec := range tbl.Drain() {
		if rec.InitWinFwd != -1 || rec.InitWinBwd != -1 {
			t.Fatalf("init windows = %d/%d, want -1/-1", rec.InitWinFwd, rec.InitWinBwd)
		}
	}
}

func TestSweepEvictsOnlyIdleFlows(t *testing.T) {
	a := net.IPv4(10, 0, 0, 1)
	b := net.IPv4(10, 0, 0, 2)
	c := net.IPv4(10, 0, 0, 3)

	timeout := 30 * time.Second
	start := time.Unix(1000, 0)

	tbl := New(0)
	tbl.Upsert(pkt(start, a, 1000, b, 80, 60, packet.FlagSYN, 0))      // flow A: last_ts = start
	tbl.Upsert(pkt(start.Add(timeout+time.Second), a, 2000, c, 80, 60, packet.FlagSYN, 0)) // flow B, fresh

	now := start.Add(timeout + time.Second)
	evicted := tbl.Sweep(now, timeout)

	if len(evicted) != 1 {
		t.Fatalf("evicted = %d, want 1", len(evicted))
	}
	if tbl.Len() != 1 {
		t.Fatalf("remaining flows = %d, want 1", tbl.Len())
	}

	// A second sweep immediately after must not re-evict anything.
	if more := tbl.Sweep(now, timeout); len(more) != 0 {
		t.Fatalf("second sweep evicted %d flows, want 0", len(more))
	}
}

func TestSweepDemotesBeforeEvicting(t *testing.T) {
	a := net.IPv4(10, 0, 0, 1)
	b := net.IPv4(10, 0, 0, 2)

	timeout := 30 * time.Second
	start := time.Unix(0, 0)

	tbl := New(0)
	tbl.Upsert(pkt(start, a, 1000, b, 80, 60, packet.FlagSYN, 0))

	// Half the timeout has passed: should demote activeHint, not evict.
	half := start.Add(timeout/2 + time.Second)
	if evicted := tbl.Sweep(half, timeout); len(evicted) != 0 {
		t.Fatalf("evicted %d flows at half-timeout, want 0", len(evicted))
	}
	if tbl.Len() != 1 {
		t.Fatal("flow should still be present after demotion")
	}
}

func TestUpsertReportsSweepCadence(t *testing.T) {
	a := net.IPv4(10, 0, 0, 1)
	b := net.IPv4(10, 0, 0, 2)

	tbl := New(3)
	due := []bool{}
	for i := 0; i < 6; i++ {
		due = append(due, tbl.Upsert(pkt(time.Unix(int64(i), 0), a, uint16(1000+i), b, 80, 60, 0, 0)))
	}

	want := []bool{false, false, true, false, false, true}
	for i := range want {
		if due[i] != want[i] {
			t.Fatalf("due[%d] = %v, want %v", i, due[i], want[i])
		}
	}
}
