// Package flowtable reconstructs bidirectional flows from a packet stream:
// insertion, direction tracking, initial-window capture, and timeout-based
// eviction via periodic sweeps.
package flowtable

import (
	"github.com/gigersam/nidspipe/internal/packet"
	"time"
)

// Table maps flow keys to in-flight Records. It is not safe for concurrent
// use; the orchestrator gives each worker its own Table.
type Table struct {
	flows      map[Key]*Record
	sweepEvery int
	count      uint64
}

// New creates an empty Table. sweepEvery is the packet-ingestion cadence at
// which Upsert reports a sweep is due; zero disables the periodic signal
// (the caller would then rely solely on Drain at end-of-capture).
func New(sweepEvery int) *Table {
	return &Table{
		flows:      make(map[Key]*Record),
		sweepEvery: sweepEvery,
	}
}

// Len reports the number of flows currently tracked.
func (t *Table) Len() int { return len(t.flows) }

// Upsert inserts a new flow or appends p to an existing one. It reports
// whether a sweep is due, per the configured cadence.
func (t *Table) Upsert(p packet.Packet) (sweepDue bool) {
	key := newKey(p.SrcIP, p.DstIP, p.SrcPort, p.DstPort, p.Protocol)

	if rec, ok := t.flows[key]; ok {
		rec.append(p)
	} else {
		rec := newRecord(key, p)
		rec.append(p)
		t.flows[key] = rec
	}

	t.count++
	return t.sweepEvery > 0 && t.count%uint64(t.sweepEvery) == 0
}

// Sweep evicts and returns every still-active flow whose last packet is
// older than now-timeout. Flows idle past half the timeout are marked
// inactive; later sweeps skip them (neither checking nor evicting them)
// until they see more traffic, and Drain still returns them.
// Eviction never mutates the map while iterating: keys are collected first.
func (t *Table) Sweep(now time.Time, timeout time.Duration) []*Record {
	var toEvict []Key

	for k, rec := range t.flows {
		if !rec.activeHint {
			continue
		}
		idle := now.Sub(rec.LastTS)
		switch {
		case idle > timeout:
			toEvict = append(toEvict, k)
		case idle > timeout/2:
			rec.activeHint = false
		}
	}

	evicted := make([]*Record, 0, len(toEvict))
	for _, k := range toEvict {
		evicted = append(evicted, t.flows[k])
		delete(t.flows, k)
	}
	return evicted
}

// Drain returns every remaining flow and empties the table, regardless of
// age. Used at end-of-capture.
func (t *Table) Drain() []*Record {
	out := make([]*Record, 0, len(t.flows))
	for k, rec := range t.flows {
		out = append(out, rec)
		delete(t.flows, k)
	}
	return out
}
