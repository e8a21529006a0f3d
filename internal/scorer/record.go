// Package scorer loads the preprocessor bundle and the two trained
// models once per process, then applies cleaning, transformation, and
// prediction to each row of a feature CSV.
package scorer

// ScoredColumns are the four trailing columns appended to the feature
// schema in the scored CSV, in order.
var ScoredColumns = []string{
	"rf_prediction",
	"rf_confidence",
	"if_anomaly_score",
	"if_is_anomaly",
}
