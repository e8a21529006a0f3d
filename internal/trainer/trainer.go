// Package trainer fits the Preprocessor Bundle and (re)trains the two
// stand-in models from CSV training data. The learning algorithm
// itself is out of scope (§9: classifier and anomaly detector are
// opaque Predict/Score contracts); trainer fits the nearest-centroid
// implementations in internal/model against whichever rows carry a
// Label column (for the classifier) or the full corpus (for the
// anomaly detector).
package trainer

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gigersam/nidspipe/internal/minilog"
	"github.com/gigersam/nidspipe/internal/model"
	"github.com/gigersam/nidspipe/internal/preprocessor"
	"github.com/gigersam/nidspipe/internal/scorer"
)

// LabelColumn is the column name carrying the ground-truth class for
// classifier training data, matching the original training corpus.
const LabelColumn = "Label"

// Config mirrors the trainer CLI's flags (§6).
type Config struct {
	TrainRF          bool
	TrainIF          bool
	RFDataPath       string
	IFDataPath       string
	TargetSampleSize int
	ChunkSize        int
	NEstimators      int
	MaxDepth         int
	NJobs            int
	Contamination    float64

	BundlePath     string
	ClassifierPath string
	AnomalyPath    string
}

// Run fits the preprocessor bundle (if absent) and any requested
// model, persisting each atomically via its package's Save function.
func Run(cfg Config) error {
	mgr := preprocessor.NewManager(cfg.BundlePath)
	if err := mgr.Load(); err != nil {
		minilog.Warn("trainer: existing bundle invalid, refitting: %v", err)
	}

	if mgr.State() != preprocessor.BundleReady {
		if cfg.RFDataPath == "" {
			return fmt.Errorf("preprocessor needs fitting but no RF data path was given")
		}
		bundle, err := fitBundle(cfg.RFDataPath, cfg.ChunkSize, cfg.TargetSampleSize)
		if err != nil {
			return fmt.Errorf("fit preprocessor: %w", err)
		}
		if err := mgr.Save(bundle); err != nil {
			return fmt.Errorf("save preprocessor: %w", err)
		}
	}
	bundle := mgr.Bundle()

	if cfg.TrainRF {
		if err := trainClassifier(bundle, cfg); err != nil {
			return fmt.Errorf("train classifier: %w", err)
		}
	}
	if cfg.TrainIF {
		if err := trainAnomaly(bundle, cfg); err != nil {
			return fmt.Errorf("train anomaly detector: %w", err)
		}
	}
	return nil
}

// fitBundle reads up to targetSampleSize rows (in chunkSize batches,
// matching the original's chunked-read discipline for memory bounds)
// and fits a preprocessor.Bundle against scorer.DefaultNumericFeatures.
func fitBundle(path string, chunkSize, targetSampleSize int) (*preprocessor.Bundle, error) {
	rows, err := readNumericRows(path, chunkSize, targetSampleSize)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no usable rows sampled from %s", path)
	}
	schema := preprocessor.Schema{Numeric: scorer.DefaultNumericFeatures, All: scorer.DefaultNumericFeatures}
	return preprocessor.Fit(schema, rows), nil
}

func trainClassifier(bundle *preprocessor.Bundle, cfg Config) error {
	rows, labels, err := readLabelledRows(cfg.RFDataPath, bundle, cfg.ChunkSize, cfg.TargetSampleSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no labelled rows sampled from %s", cfg.RFDataPath)
	}
	c := model.Fit(rows, labels)
	return model.SaveClassifier(cfg.ClassifierPath, c)
}

func trainAnomaly(bundle *preprocessor.Bundle, cfg Config) error {
	rows, err := readTransformedRows(cfg.IFDataPath, bundle, cfg.ChunkSize, cfg.TargetSampleSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no rows sampled from %s", cfg.IFDataPath)
	}
	contamination := cfg.Contamination
	if contamination == 0 {
		contamination = 0.1
	}
	a := model.FitAnomaly(rows, contamination)
	return model.SaveAnomaly(cfg.AnomalyPath, a)
}

// readNumericRows reads up to limit data rows from path as
// column->float64 maps over scorer.DefaultNumericFeatures, logging
// progress every chunkSize rows. A header missing any required column
// fails the whole read.
func readNumericRows(path string, chunkSize, limit int) ([]map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, col := range scorer.DefaultNumericFeatures {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %v", missing)
	}

	var rows []map[string]float64
	count := 0
	for {
		if limit > 0 && len(rows) >= limit {
			break
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", count, err)
		}
		count++

		values := make(map[string]float64, len(scorer.DefaultNumericFeatures))
		for _, col := range scorer.DefaultNumericFeatures {
			values[col] = parseCell(row[colIndex[col]])
		}
		rows = append(rows, values)

		if chunkSize > 0 && count%chunkSize == 0 {
			minilog.Debug("trainer: %s processed %d rows", path, count)
		}
	}
	return rows, nil
}

func readLabelledRows(path string, bundle *preprocessor.Bundle, chunkSize, limit int) ([][]float64, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[strings.TrimSpace(h)] = i
	}
	labelCol, ok := colIndex[LabelColumn]
	if !ok {
		return nil, nil, fmt.Errorf("label column %q missing from %s", LabelColumn, path)
	}

	var xs [][]float64
	var labels []string
	count := 0
	for {
		if limit > 0 && len(xs) >= limit {
			break
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", count, err)
		}
		count++

		values := make(map[string]float64, len(bundle.Schema.All))
		for _, col := range bundle.Schema.All {
			idx, ok := colIndex[col]
			if !ok {
				continue
			}
			values[col] = parseCell(row[idx])
		}
		x, err := bundle.Transform(values)
		if err != nil {
			minilog.Warn("trainer: skipping row %d, %v", count, err)
			continue
		}
		xs = append(xs, x)
		labels = append(labels, row[labelCol])

		if chunkSize > 0 && count%chunkSize == 0 {
			minilog.Debug("trainer: %s processed %d rows", path, count)
		}
	}
	return xs, labels, nil
}

func readTransformedRows(path string, bundle *preprocessor.Bundle, chunkSize, limit int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[strings.TrimSpace(h)] = i
	}

	var xs [][]float64
	count := 0
	for {
		if limit > 0 && len(xs) >= limit {
			break
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", count, err)
		}
		count++

		values := make(map[string]float64, len(bundle.Schema.All))
		for _, col := range bundle.Schema.All {
			idx, ok := colIndex[col]
			if !ok {
				continue
			}
			values[col] = parseCell(row[idx])
		}
		x, err := bundle.Transform(values)
		if err != nil {
			minilog.Warn("trainer: skipping row %d, %v", count, err)
			continue
		}
		xs = append(xs, x)

		if chunkSize > 0 && count%chunkSize == 0 {
			minilog.Debug("trainer: %s processed %d rows", path, count)
		}
	}
	return xs, nil
}

func parseCell(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
