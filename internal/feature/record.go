// Package feature computes the fixed per-flow statistical schema consumed
// by the scoring pipeline, from a finalised flowtable.Record.
package feature

import (
	"time"

	"github.com/gigersam/nidspipe/internal/flowtable"
	"github.com/gigersam/nidspipe/internal/packet"
)

// Record is one row of the flow feature CSV. Field order here has no
// bearing on the CSV column order; Columns and Row are the source of
// truth for that.
type Record struct {
	FlowKey  string
	SrcIP    string
	DstIP    string
	SrcPort  uint16
	DstPort  uint16
	Protocol packet.Protocol

	FlowStartTS  float64
	FlowLastTS   float64
	FlowDuration float64

	FwdPktsTot int
	BwdPktsTot int
	TotPkts    int

	FwdBytesTot int
	BwdBytesTot int
	TotBytes    int

	FwdPktLenMin, FwdPktLenMax, FwdPktLenMean, FwdPktLenStd float64
	BwdPktLenMin, BwdPktLenMax, BwdPktLenMean, BwdPktLenStd float64
	FlowPktLenMin, FlowPktLenMax, FlowPktLenMean, FlowPktLenStd float64
	AvgPktSize float64

	FwdIatMin, FwdIatMax, FwdIatMean, FwdIatStd   float64
	BwdIatMin, BwdIatMax, BwdIatMean, BwdIatStd   float64
	FlowIatMin, FlowIatMax, FlowIatMean, FlowIatStd float64

	FwdHeaderLen int
	BwdHeaderLen int

	FwdSegSizeAvg float64
	BwdSegSizeAvg float64

	PktsPerSec  float64
	BytesPerSec float64

	FwdPSHFlags, BwdPSHFlags int
	FwdURGFlags, BwdURGFlags int
	SYNFlagCnt, FINFlagCnt, RSTFlagCnt, ACKFlagCnt int
	PSHFlagCnt, URGFlagCnt                         int

	DownUpRatio float64

	InitWinBytesFwd int
	InitWinBytesBwd int
}

// Compute derives the Feature Record for a single finalised flow. It
// returns false if the flow carried no packets and should be dropped.
func Compute(rec *flowtable.Record) (Record, bool) {
	if len(rec.Packets) == 0 {
		return Record{}, false
	}

	out := Record{
		FlowKey:  rec.Key.String(),
		SrcIP:    rec.Initiator.IP.String(),
		DstIP:    rec.Responder.IP.String(),
		SrcPort:  rec.Initiator.Port,
		DstPort:  rec.Responder.Port,
		Protocol: rec.Proto,

		FlowStartTS: tsSeconds(rec.StartTS),
		FlowLastTS:  tsSeconds(rec.LastTS),
	}

	duration := out.FlowLastTS - out.FlowStartTS
	if duration < 1e-9 {
		duration = 1e-9
	}
	out.FlowDuration = duration

	var (
		fwdLens, bwdLens, allLens       []float64
		fwdTimes, bwdTimes, allTimes    []float64
		fwdHeaderBytes, bwdHeaderBytes  int
		fwdBytes, bwdBytes              int
	)

	for _, p := range rec.Packets {
		length := float64(p.Length)
		ts := tsSeconds(p.TS)

		allLens = append(allLens, length)
		allTimes = append(allTimes, ts)

		if p.Direction == flowtable.Forward {
			out.FwdPktsTot++
			fwdBytes += p.Length
			fwdHeaderBytes += p.HeaderLen
			fwdLens = append(fwdLens, length)
			fwdTimes = append(fwdTimes, ts)
		} else {
			out.BwdPktsTot++
			bwdBytes += p.Length
			bwdHeaderBytes += p.HeaderLen
			bwdLens = append(bwdLens, length)
			bwdTimes = append(bwdTimes, ts)
		}

		if p.Flags.Has(packet.FlagPSH) {
			out.PSHFlagCnt++
			if p.Direction == flowtable.Forward {
				out.FwdPSHFlags++
			} else {
				out.BwdPSHFlags++
			}
		}
		if p.Flags.Has(packet.FlagURG) {
			out.URGFlagCnt++
			if p.Direction == flowtable.Forward {
				out.FwdURGFlags++
			} else {
				out.BwdURGFlags++
			}
		}
		if p.Flags.Has(packet.FlagSYN) {
			out.SYNFlagCnt++
		}
		if p.Flags.Has(packet.FlagFIN) {
			out.FINFlagCnt++
		}
		if p.Flags.Has(packet.FlagRST) {
			out.RSTFlagCnt++
		}
		if p.Flags.Has(packet.FlagACK) {
			out.ACKFlagCnt++
		}
	}

	out.TotPkts = out.FwdPktsTot + out.BwdPktsTot
	out.FwdBytesTot, out.BwdBytesTot = fwdBytes, bwdBytes
	out.TotBytes = fwdBytes + bwdBytes

	out.FwdPktLenMin, out.FwdPktLenMax, out.FwdPktLenMean, out.FwdPktLenStd = stats(fwdLens)
	out.BwdPktLenMin, out.BwdPktLenMax, out.BwdPktLenMean, out.BwdPktLenStd = stats(bwdLens)
	out.FlowPktLenMin, out.FlowPktLenMax, out.FlowPktLenMean, out.FlowPktLenStd = stats(allLens)
	out.AvgPktSize = out.FlowPktLenMean

	out.FwdIatMin, out.FwdIatMax, out.FwdIatMean, out.FwdIatStd = stats(interArrivalTimes(fwdTimes))
	out.BwdIatMin, out.BwdIatMax, out.BwdIatMean, out.BwdIatStd = stats(interArrivalTimes(bwdTimes))
	out.FlowIatMin, out.FlowIatMax, out.FlowIatMean, out.FlowIatStd = stats(interArrivalTimes(allTimes))

	out.FwdHeaderLen, out.BwdHeaderLen = fwdHeaderBytes, bwdHeaderBytes

	fwdPayload := fwdBytes - fwdHeaderBytes
	if fwdPayload < 0 {
		fwdPayload = 0
	}
	bwdPayload := bwdBytes - bwdHeaderBytes
	if bwdPayload < 0 {
		bwdPayload = 0
	}
	if out.FwdPktsTot > 0 {
		out.FwdSegSizeAvg = float64(fwdPayload) / float64(out.FwdPktsTot)
	}
	if out.BwdPktsTot > 0 {
		out.BwdSegSizeAvg = float64(bwdPayload) / float64(out.BwdPktsTot)
	}

	out.PktsPerSec = float64(out.TotPkts) / out.FlowDuration
	out.BytesPerSec = float64(out.TotBytes) / out.FlowDuration

	out.DownUpRatio = float64(bwdBytes) / (float64(fwdBytes) + 1e-9)

	out.InitWinBytesFwd = rec.InitWinFwd
	out.InitWinBytesBwd = rec.InitWinBwd

	scrubNonFinite(&out)
	return out, true
}

func tsSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
