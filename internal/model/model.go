// Package model defines the opaque prediction contracts the scorer
// depends on, and a concrete nearest-centroid implementation of each.
// Algorithm choice is explicitly out of scope for this system; any
// implementation satisfying Classifier/AnomalyDetector is substitutable.
package model

// Classifier is the supervised multiclass model: given a row of
// preprocessed numeric features (in the bundle's declared order), it
// returns a predicted label and a confidence in [0,1]. Confidence is
// NaN if the implementation cannot produce one.
type Classifier interface {
	Predict(x []float64) (label string, confidence float64)
}

// AnomalyDetector is the unsupervised model: lower scores are more
// anomalous. IsAnomaly reflects the detector's own internal threshold,
// not the router's.
type AnomalyDetector interface {
	Score(x []float64) (score float64, isAnomaly bool)
}

// UnknownLabel is returned by the scorer in place of a classifier
// prediction when no classifier model is loaded (§4.6 degradation).
const UnknownLabel = "Unknown"
