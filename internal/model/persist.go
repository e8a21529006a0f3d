package model

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// SaveClassifier atomically persists c to path (write-temp-then-rename,
// the same discipline the preprocessor bundle uses).
func SaveClassifier(path string, c *CentroidClassifier) error {
	return atomicGobWrite(path, c)
}

// LoadClassifier loads a classifier previously written by SaveClassifier.
// A missing file is reported via os.IsNotExist on the returned error so
// callers can distinguish "absent" (degrade) from "corrupt" (fail).
func LoadClassifier(path string) (*CentroidClassifier, error) {
	var c CentroidClassifier
	if err := gobRead(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveAnomaly atomically persists d to path.
func SaveAnomaly(path string, d *CentroidAnomalyDetector) error {
	return atomicGobWrite(path, d)
}

// LoadAnomaly loads an anomaly detector previously written by SaveAnomaly.
func LoadAnomaly(path string) (*CentroidAnomalyDetector, error) {
	var d CentroidAnomalyDetector
	if err := gobRead(path, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func atomicGobWrite(path string, v interface{}) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp model file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename model into place: %w", err)
	}
	return nil
}

func gobRead(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode model %s: %w", path, err)
	}
	return nil
}
