package scorer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gigersam/nidspipe/internal/feature"
	"github.com/gigersam/nidspipe/internal/model"
	"github.com/gigersam/nidspipe/internal/preprocessor"
)

func testBundle() *preprocessor.Bundle {
	schema := preprocessor.Schema{
		Numeric: DefaultNumericFeatures,
		All:     DefaultNumericFeatures,
	}
	rows := []map[string]float64{
		sampleRow(1, 10),
		sampleRow(2, 20),
		sampleRow(3, 30),
	}
	return preprocessor.Fit(schema, rows)
}

func sampleRow(scale, port float64) map[string]float64 {
	row := make(map[string]float64, len(DefaultNumericFeatures))
	for _, col := range DefaultNumericFeatures {
		row[col] = scale
	}
	row["dst_port"] = port
	return row
}

func writeFeatureCSV(t *testing.T, path string, row map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(feature.Columns); err != nil {
		t.Fatalf("write header: %v", err)
	}
	record := make([]string, len(feature.Columns))
	for i, col := range feature.Columns {
		if v, ok := row[col]; ok {
			record[i] = v
		} else {
			record[i] = "0"
		}
	}
	if err := w.Write(record); err != nil {
		t.Fatalf("write row: %v", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func newScorerForTest(t *testing.T, withClassifier, withAnomaly bool) *Scorer {
	t.Helper()
	dir := t.TempDir()

	mgr := preprocessor.NewManager(filepath.Join(dir, "bundle.gob"))
	if err := mgr.Save(testBundle()); err != nil {
		t.Fatalf("save bundle: %v", err)
	}

	rfPath := filepath.Join(dir, "rf.gob")
	ifPath := filepath.Join(dir, "if.gob")

	bundle := mgr.Bundle()
	low, err := bundle.Transform(sampleRow(1, 10))
	if err != nil {
		t.Fatalf("transform low: %v", err)
	}
	high, err := bundle.Transform(sampleRow(3, 30))
	if err != nil {
		t.Fatalf("transform high: %v", err)
	}

	if withClassifier {
		c := model.Fit([][]float64{low, high}, []string{"Benign", "DoS"})
		if err := model.SaveClassifier(rfPath, c); err != nil {
			t.Fatalf("save classifier: %v", err)
		}
	}
	if withAnomaly {
		a := model.FitAnomaly([][]float64{low, high}, 0.1)
		if err := model.SaveAnomaly(ifPath, a); err != nil {
			t.Fatalf("save anomaly: %v", err)
		}
	}

	s, err := New(mgr.Path, rfPath, ifPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestScoreCSVAppendsFourColumns(t *testing.T) {
	s := newScorerForTest(t, true, true)

	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.csv")
	outPath := filepath.Join(dir, "out.csv")
	writeFeatureCSV(t, inPath, map[string]string{"dst_port": "20"})

	if err := s.ScoreCSV(inPath, outPath); err != nil {
		t.Fatalf("ScoreCSV: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	wantHeader := strings.Join(feature.Columns, ",") + "," + strings.Join(ScoredColumns, ",")
	if lines[0] != wantHeader {
		t.Fatalf("header = %q, want %q", lines[0], wantHeader)
	}

	fields := strings.Split(lines[1], ",")
	if len(fields) != len(feature.Columns)+4 {
		t.Fatalf("row field count = %d, want %d", len(fields), len(feature.Columns)+4)
	}
	label := fields[len(feature.Columns)]
	if label != "Benign" && label != "DoS" {
		t.Fatalf("rf_prediction = %q, want a known label", label)
	}
}

func TestScoreCSVDegradesWithoutAnomalyModel(t *testing.T) {
	s := newScorerForTest(t, true, false)

	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.csv")
	outPath := filepath.Join(dir, "out.csv")
	writeFeatureCSV(t, inPath, nil)

	if err := s.ScoreCSV(inPath, outPath); err != nil {
		t.Fatalf("ScoreCSV: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	fields := strings.Split(lines[1], ",")
	n := len(feature.Columns)
	if fields[n+2] != "0" {
		t.Fatalf("if_anomaly_score = %q, want 0 when the anomaly model is absent", fields[n+2])
	}
	if fields[n+3] != "False" {
		t.Fatalf("if_is_anomaly = %q, want False when the anomaly model is absent", fields[n+3])
	}
	if fields[n] != "Benign" && fields[n] != "DoS" {
		t.Fatalf("rf_prediction should be unaffected by the missing anomaly model, got %q", fields[n])
	}
}

func TestScoreCSVDegradesWithoutClassifier(t *testing.T) {
	s := newScorerForTest(t, false, true)

	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.csv")
	outPath := filepath.Join(dir, "out.csv")
	writeFeatureCSV(t, inPath, nil)

	if err := s.ScoreCSV(inPath, outPath); err != nil {
		t.Fatalf("ScoreCSV: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	fields := strings.Split(lines[1], ",")
	n := len(feature.Columns)
	if fields[n] != model.UnknownLabel {
		t.Fatalf("rf_prediction = %q, want %q when the classifier is absent", fields[n], model.UnknownLabel)
	}
	if fields[n+1] != "" {
		t.Fatalf("rf_confidence = %q, want blank when the classifier is absent", fields[n+1])
	}
}

func TestScoreCSVRejectsMissingColumn(t *testing.T) {
	s := newScorerForTest(t, true, true)

	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.csv")
	outPath := filepath.Join(dir, "out.csv")

	f, err := os.Create(inPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Header omits "dst_port", a required numeric column.
	header := make([]string, 0, len(feature.Columns)-1)
	for _, col := range feature.Columns {
		if col != "dst_port" {
			header = append(header, col)
		}
	}
	w := csv.NewWriter(f)
	w.Write(header)
	w.Write(make([]string, len(header)))
	w.Flush()
	f.Close()

	err = s.ScoreCSV(inPath, outPath)
	if err == nil {
		t.Fatal("expected an error for a feature CSV missing a required column")
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Fatal("expected no output file when the schema check fails")
	}
}
