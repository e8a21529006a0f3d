// Package router splits scored rows into benign and suspicious sets,
// appends benign rows to the rolling training corpus, and hands
// suspicious batches off to the uploader.
package router

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gigersam/nidspipe/internal/feature"
	"github.com/gigersam/nidspipe/internal/minilog"
	"github.com/gigersam/nidspipe/internal/scorer"
)

// DefaultThreshold is τ, the anomaly-score cutoff at or below which a
// nominally-benign row is still routed to suspicious.
const DefaultThreshold = -0.75

// Config names every path the router touches. CorpusPath and
// SuspiciousDir are created on first use if absent.
type Config struct {
	Threshold     float64
	CorpusPath    string
	SuspiciousDir string
}

func (c Config) withDefaults() Config {
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
	return c
}

// Result summarises one router pass over a scored CSV.
type Result struct {
	BenignCount     int
	SuspiciousCount int
	SuspiciousPath  string // empty if no row was suspicious
	UploadFailed    bool
}

var header = append(append([]string{}, feature.Columns...), scorer.ScoredColumns...)

func columnIndex(name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

var (
	labelIdx = columnIndex("rf_prediction")
	scoreIdx = columnIndex("if_anomaly_score")
)

// isSuspicious implements §4.7: label != Benign, or the anomaly score
// sits at or below τ.
func isSuspicious(row []string, threshold float64) (bool, error) {
	label := row[labelIdx]
	if label != "Benign" {
		return true, nil
	}
	score, err := strconv.ParseFloat(row[scoreIdx], 64)
	if err != nil {
		return false, fmt.Errorf("parse if_anomaly_score %q: %w", row[scoreIdx], err)
	}
	return score <= threshold, nil
}

// Split reads a scored CSV, appends benign rows to the training corpus,
// and (if any row qualifies) writes a suspicious CSV named after the
// input batch. It does not move or delete scoredCSVPath; the caller
// decides when the batch as a whole is done.
func Split(scoredCSVPath string, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()

	in, err := os.Open(scoredCSVPath)
	if err != nil {
		return Result{}, fmt.Errorf("open scored csv: %w", err)
	}
	defer in.Close()

	r := csv.NewReader(in)
	gotHeader, err := r.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read scored csv header: %w", err)
	}
	if len(gotHeader) != len(header) {
		return Result{}, fmt.Errorf("scored csv has %d columns, want %d", len(gotHeader), len(header))
	}

	var suspicious [][]string
	var res Result

	corpusAppend, err := openCorpusForAppend(cfg.CorpusPath)
	if err != nil {
		return Result{}, err
	}
	defer corpusAppend.Close()
	corpusWriter := csv.NewWriter(corpusAppend)

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read scored csv row: %w", err)
		}

		bad, err := isSuspicious(row, cfg.Threshold)
		if err != nil {
			return Result{}, err
		}
		if bad {
			suspicious = append(suspicious, row)
			res.SuspiciousCount++
			continue
		}
		if err := corpusWriter.Write(row[:len(feature.Columns)]); err != nil {
			return Result{}, fmt.Errorf("append corpus row: %w", err)
		}
		res.BenignCount++
	}
	corpusWriter.Flush()
	if err := corpusWriter.Error(); err != nil {
		return Result{}, fmt.Errorf("flush corpus: %w", err)
	}

	if len(suspicious) > 0 {
		path, err := writeSuspiciousBatch(cfg.SuspiciousDir, scoredCSVPath, suspicious)
		if err != nil {
			return Result{}, err
		}
		res.SuspiciousPath = path
	}

	minilog.Info("router: %s -> %d benign, %d suspicious", scoredCSVPath, res.BenignCount, res.SuspiciousCount)
	return res, nil
}

// openCorpusForAppend opens the training corpus for append, writing the
// feature header first if the file is new.
func openCorpusForAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create corpus directory: %w", err)
	}

	_, statErr := os.Stat(path)
	needsHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}

	if needsHeader {
		w := csv.NewWriter(f)
		if err := w.Write(feature.Columns); err != nil {
			f.Close()
			return nil, fmt.Errorf("write corpus header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("flush corpus header: %w", err)
		}
	}
	return f, nil
}

func writeSuspiciousBatch(dir, scoredCSVPath string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create suspicious directory: %w", err)
	}
	name := filepath.Base(scoredCSVPath)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create suspicious batch: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write suspicious header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write suspicious row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush suspicious batch: %w", err)
	}
	return path, nil
}
