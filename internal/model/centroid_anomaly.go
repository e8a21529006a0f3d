package model

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// CentroidAnomalyDetector is an isolation-forest stand-in: distance from
// a single global centroid, negated so lower is more anomalous, matching
// the detector contract. Threshold is the detector's own internal
// contamination cutoff — the router applies its own, separate τ on top
// of this score.
type CentroidAnomalyDetector struct {
	Center    []float64
	Threshold float64
}

var _ AnomalyDetector = (*CentroidAnomalyDetector)(nil)

// FitAnomaly computes the centroid of rows and sets the threshold so
// that roughly `contamination` of the fitted rows would be flagged
// anomalous (the score below which a row is considered an outlier).
func FitAnomaly(rows [][]float64, contamination float64) *CentroidAnomalyDetector {
	if len(rows) == 0 {
		return &CentroidAnomalyDetector{}
	}

	center := make([]float64, len(rows[0]))
	for _, row := range rows {
		floats.Add(center, row)
	}
	floats.Scale(1/float64(len(rows)), center)

	d := &CentroidAnomalyDetector{Center: center}

	scores := make([]float64, len(rows))
	for i, row := range rows {
		scores[i] = -euclidean(row, center)
	}
	d.Threshold = percentile(scores, contamination)

	return d
}

// Score implements AnomalyDetector.
func (d *CentroidAnomalyDetector) Score(x []float64) (float64, bool) {
	if len(d.Center) == 0 {
		return 0.0, false
	}
	score := -euclidean(x, d.Center)
	return score, score <= d.Threshold
}

// percentile returns the value below which roughly `frac` of sorted
// scores fall (frac in [0,1]).
func percentile(scores []float64, frac float64) float64 {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	if frac <= 0 {
		return sorted[0]
	}
	if frac >= 1 {
		return sorted[len(sorted)-1]
	}

	idx := int(frac * float64(len(sorted)-1))
	return sorted[idx]
}
