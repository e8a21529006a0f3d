// Package orchestrator fans capture files out to one worker per file,
// each owning its own Flow Table and temporary output, then merges the
// successful workers' output into a single feature CSV.
package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gigersam/nidspipe/internal/minilog"
	"github.com/gigersam/nidspipe/internal/sysinfo"
)

var captureExtensions = map[string]bool{
	".pcap":   true,
	".pcapng": true,
}

// Config tunes the flow table and worker pool. Zero values fall back to
// the package defaults applied by Run.
type Config struct {
	FlowTimeout time.Duration // inactivity timeout before a sweep evicts a flow
	SweepEvery  int           // packets between periodic sweeps
	Workers     int           // 0 selects sysinfo.Snapshot.WorkerCount()
}

const (
	defaultFlowTimeout = 30 * time.Second
	defaultSweepEvery  = 2500
)

func (c Config) withDefaults() Config {
	if c.FlowTimeout <= 0 {
		c.FlowTimeout = defaultFlowTimeout
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = defaultSweepEvery
	}
	return c
}

// Summary reports the outcome of one Run.
type Summary struct {
	FilesTotal     int
	FilesSucceeded int
	FilesFailed    int
	FlowsWritten   int
}

// Run converts every capture file in inputDir into feature rows and
// merges them into a single CSV at outputPath. A per-file failure is
// counted and logged, not retried; the merge proceeds over whatever
// workers succeeded.
func Run(inputDir, outputPath string, cfg Config) (Summary, error) {
	cfg = cfg.withDefaults()

	files, err := listCaptureFiles(inputDir)
	if err != nil {
		return Summary{}, fmt.Errorf("list capture files: %w", err)
	}
	if len(files) == 0 {
		minilog.Info("orchestrator: no capture files found in %s", inputDir)
		return Summary{}, nil
	}

	workers := cfg.Workers
	if workers <= 0 {
		snap, err := sysinfo.Read()
		if err != nil {
			minilog.Warn("orchestrator: sysinfo.Read failed, defaulting to 1 worker: %v", err)
			workers = 1
		} else {
			workers = snap.WorkerCount()
		}
	}
	minilog.Info("orchestrator: processing %d files with %d workers", len(files), workers)

	tempDir, err := os.MkdirTemp("", fmt.Sprintf("nidspipe-convert-%d-", os.Getpid()))
	if err != nil {
		return Summary{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	results := make([]workerResult, len(files))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		tempPath := filepath.Join(tempDir, fmt.Sprintf("flows_%d.csv.tmp", i))
		g.Go(func() error {
			results[i] = processFile(path, tempPath, cfg)
			return nil // per-file errors are captured in workerResult, not propagated
		})
	}
	_ = g.Wait()

	var summary Summary
	summary.FilesTotal = len(files)
	var successfulTemps []string
	for _, r := range results {
		if r.err != nil {
			summary.FilesFailed++
			minilog.Error("orchestrator: %s failed: %v", r.source, r.err)
			continue
		}
		summary.FilesSucceeded++
		summary.FlowsWritten += r.flowsWritten
		successfulTemps = append(successfulTemps, r.tempPath)
	}

	if len(successfulTemps) == 0 {
		minilog.Error("orchestrator: no successful workers, no output written")
		return summary, nil
	}

	if err := mergeTempFiles(successfulTemps, outputPath); err != nil {
		return summary, fmt.Errorf("merge temp files: %w", err)
	}

	minilog.Info("orchestrator: wrote %d flows from %d/%d files to %s",
		summary.FlowsWritten, summary.FilesSucceeded, summary.FilesTotal, outputPath)
	return summary, nil
}

func listCaptureFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if captureExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
