package preprocessor

import (
	"fmt"
)

// ErrSchemaMismatch is returned by Transform when the input row is
// missing a column the bundle was fit against.
type ErrSchemaMismatch struct {
	Missing []string
}

func (e *ErrSchemaMismatch) Error() string {
	return fmt.Sprintf("input missing required feature columns: %v", e.Missing)
}

// Transform applies b to a single row, producing the numeric vector in
// the fixed order: numeric columns first (imputed, then standardised),
// followed by one-hot blocks for each categorical column in schema
// order. Values for numeric columns are taken as already-cleaned
// float64s with NaN standing in for "missing" (the scorer's cleaning
// step is responsible for that coercion).
func (b *Bundle) Transform(row map[string]float64) ([]float64, error) {
	var missing []string
	for _, col := range b.Schema.All {
		if _, ok := row[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &ErrSchemaMismatch{Missing: missing}
	}

	out := make([]float64, 0, len(b.Schema.Numeric)+len(b.Schema.Categorical)*4)

	for _, col := range b.Schema.Numeric {
		v := row[col]
		if !isFinite(v) {
			v = b.Medians[col]
		}
		out = append(out, (v-b.Means[col])/b.Stds[col])
	}

	for _, col := range b.Schema.Categorical {
		levels := b.Categories[col]
		// The row's categorical value travels as a float64-encoded
		// level index; callers with genuine string categoricals should
		// pre-map through Categories before calling Transform. Unknown
		// levels (index out of range) contribute an all-zero block,
		// matching OneHotEncoder(handle_unknown="ignore").
		idx := int(row[col])
		block := make([]float64, len(levels))
		if idx >= 0 && idx < len(levels) {
			block[idx] = 1
		}
		out = append(out, block...)
	}

	return out, nil
}

// NumericOutputLen is the width of the numeric-only prefix of
// Transform's output, i.e. len(Schema.Numeric).
func (b *Bundle) NumericOutputLen() int { return len(b.Schema.Numeric) }
