package scorer

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gigersam/nidspipe/internal/model"
)

// ScoreCSV reads a Feature Record CSV from inPath, appends ScoredColumns
// to each row, and writes the result to outPath. The input header must
// carry every column the preprocessor bundle was fit against; a missing
// column fails the whole file before any output is written.
func (s *Scorer) ScoreCSV(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	r := csv.NewReader(in)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, col := range s.bundle.Schema.All {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("score %s: %w", inPath, &rowMissingColumns{missing})
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(append(append([]string{}, header...), ScoredColumns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		scored, err := s.scoreRow(row, colIndex)
		if err != nil {
			return fmt.Errorf("score row: %w", err)
		}
		if err := w.Write(append(append([]string{}, row...), scored...)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// scoreRow cleans the row's numeric columns, transforms it through the
// bundle, and predicts with whichever models are loaded, returning the
// four ScoredColumns values in order.
func (s *Scorer) scoreRow(row []string, colIndex map[string]int) ([]string, error) {
	clean := make(map[string]float64, len(s.bundle.Schema.All))
	for _, col := range s.bundle.Schema.Numeric {
		clean[col] = cleanValue(row[colIndex[col]])
	}
	for _, col := range s.bundle.Schema.Categorical {
		clean[col] = cleanValue(row[colIndex[col]])
	}

	x, err := s.bundle.Transform(clean)
	if err != nil {
		return nil, err
	}

	label := model.UnknownLabel
	confidenceStr := ""
	if s.classifier != nil {
		var confidence float64
		label, confidence = s.classifier.Predict(x)
		confidenceStr = strconv.FormatFloat(confidence, 'f', -1, 64)
	}

	score, isAnomaly := 0.0, false
	if s.anomaly != nil {
		score, isAnomaly = s.anomaly.Score(x)
	}

	return []string{label, confidenceStr, strconv.FormatFloat(score, 'f', -1, 64), formatBool(isAnomaly)}, nil
}

// cleanValue coerces a raw CSV field into a numeric value, treating
// blank, non-numeric, and ±Inf inputs as missing (NaN); the bundle's
// Transform imputes NaN to that column's training median.
func cleanValue(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

type rowMissingColumns struct {
	Missing []string
}

func (e *rowMissingColumns) Error() string {
	return fmt.Sprintf("missing required feature columns: %v", e.Missing)
}
