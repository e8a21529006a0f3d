// Package preprocessor persists and applies the (feature-schema,
// transformer) pair that training and scoring must agree on exactly:
// median imputation plus standardisation for numeric columns, and
// ignore-unknown one-hot encoding for categorical ones.
package preprocessor

// bundleVersion is bumped whenever the persisted layout changes
// incompatibly. Load rejects any other version as BundleInvalid rather
// than risk silently misreading a stale structure.
const bundleVersion = 1

// Schema names the columns a Bundle was fit against.
type Schema struct {
	Numeric     []string
	Categorical []string
	All         []string
}

// Bundle is the persisted transformer: per-numeric-column median (for
// imputing missing/non-finite values) and mean/std (for standardising
// afterwards), plus per-categorical-column known levels for one-hot
// encoding with unknown values ignored.
type Bundle struct {
	Version    int
	Schema     Schema
	Medians    map[string]float64
	Means      map[string]float64
	Stds       map[string]float64
	Categories map[string][]string
}

// Valid reports whether b has the structural shape §4.10 requires:
// both the schema and transformer present, with a non-empty feature
// list.
func (b *Bundle) Valid() bool {
	return b != nil &&
		b.Version == bundleVersion &&
		len(b.Schema.All) > 0 &&
		b.Medians != nil && b.Means != nil && b.Stds != nil
}
