package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// CentroidClassifier is a nearest-centroid stand-in for the supervised
// multiclass model: one mean feature vector per training label.
// Confidence is a softmax over negative distances to every centroid,
// so it stays in [0,1] and sums to 1 across labels without requiring
// the underlying algorithm to expose class probabilities natively.
type CentroidClassifier struct {
	Labels    []string
	Centroids [][]float64
}

var _ Classifier = (*CentroidClassifier)(nil)

// Fit builds a CentroidClassifier from labelled training rows. Rows
// sharing a label are averaged component-wise.
func Fit(rows [][]float64, labels []string) *CentroidClassifier {
	sums := map[string][]float64{}
	counts := map[string]int{}

	for i, row := range rows {
		label := labels[i]
		if sums[label] == nil {
			sums[label] = make([]float64, len(row))
		}
		floats.Add(sums[label], row)
		counts[label]++
	}

	var names []string
	for label := range sums {
		names = append(names, label)
	}
	sort.Strings(names)

	c := &CentroidClassifier{}
	for _, label := range names {
		centroid := sums[label]
		floats.Scale(1/float64(counts[label]), centroid)
		c.Labels = append(c.Labels, label)
		c.Centroids = append(c.Centroids, centroid)
	}
	return c
}

// Predict implements Classifier.
func (c *CentroidClassifier) Predict(x []float64) (string, float64) {
	if len(c.Labels) == 0 {
		return UnknownLabel, math.NaN()
	}

	dists := make([]float64, len(c.Labels))
	for i, centroid := range c.Centroids {
		dists[i] = euclidean(x, centroid)
	}

	best := floats.MinIdx(dists)

	// Softmax over negative distances gives a confidence that
	// favours the nearest centroid without dividing by zero when a
	// row sits exactly on it.
	weights := make([]float64, len(dists))
	var sum float64
	for i, d := range dists {
		weights[i] = math.Exp(-d)
		sum += weights[i]
	}
	confidence := weights[best] / sum

	return c.Labels[best], confidence
}

func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
