package feature

import (
	"math"
	"sort"
)

// stats returns (min, max, mean, stddev) of data, using the sample
// (Bessel-corrected) standard deviation. An empty slice yields all
// zeros; a single-element slice yields that value with a zero stddev.
func stats(data []float64) (min, max, mean, std float64) {
	switch len(data) {
	case 0:
		return 0, 0, 0, 0
	case 1:
		return data[0], data[0], data[0], 0
	}

	min, max = data[0], data[0]
	var sum float64
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean = sum / float64(len(data))

	var sqDiff float64
	for _, v := range data {
		d := v - mean
		sqDiff += d * d
	}
	std = math.Sqrt(sqDiff / float64(len(data)-1))

	return min, max, mean, std
}

// interArrivalTimes sorts a copy of timestamps and returns the
// consecutive differences, discarding any negative gap.
func interArrivalTimes(timestamps []float64) []float64 {
	if len(timestamps) < 2 {
		return nil
	}

	sorted := append([]float64(nil), timestamps...)
	sort.Float64s(sorted)

	iats := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		if d := sorted[i] - sorted[i-1]; d >= 0 {
			iats = append(iats, d)
		}
	}
	return iats
}

// scrubNonFinite replaces any NaN/Inf produced by rate or ratio
// calculations with 0, matching how the reference pipeline sanitises
// its output row before writing it.
func scrubNonFinite(r *Record) {
	fields := []*float64{
		&r.FlowDuration,
		&r.FwdPktLenMin, &r.FwdPktLenMax, &r.FwdPktLenMean, &r.FwdPktLenStd,
		&r.BwdPktLenMin, &r.BwdPktLenMax, &r.BwdPktLenMean, &r.BwdPktLenStd,
		&r.FlowPktLenMin, &r.FlowPktLenMax, &r.FlowPktLenMean, &r.FlowPktLenStd,
		&r.AvgPktSize,
		&r.FwdIatMin, &r.FwdIatMax, &r.FwdIatMean, &r.FwdIatStd,
		&r.BwdIatMin, &r.BwdIatMax, &r.BwdIatMean, &r.BwdIatStd,
		&r.FlowIatMin, &r.FlowIatMax, &r.FlowIatMean, &r.FlowIatStd,
		&r.FwdSegSizeAvg, &r.BwdSegSizeAvg,
		&r.PktsPerSec, &r.BytesPerSec,
		&r.DownUpRatio,
	}
	for _, f := range fields {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
}
