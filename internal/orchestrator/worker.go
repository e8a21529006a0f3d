package orchestrator

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/gigersam/nidspipe/internal/capture"
	"github.com/gigersam/nidspipe/internal/feature"
	"github.com/gigersam/nidspipe/internal/flowtable"
	"github.com/gigersam/nidspipe/internal/minilog"
	"github.com/gigersam/nidspipe/internal/packet"
)

type workerResult struct {
	source       string
	tempPath     string
	flowsWritten int
	err          error
}

// processFile owns one capture file end to end: its own Capture Reader,
// Flow Table, and temporary CSV output. Nothing here is shared with
// any other worker.
func processFile(source, tempPath string, cfg Config) workerResult {
	res := workerResult{source: source, tempPath: tempPath}

	reader, err := capture.Open(source)
	if err != nil {
		res.err = fmt.Errorf("open: %w", err)
		return res
	}
	defer reader.Close()

	out, err := os.Create(tempPath)
	if err != nil {
		res.err = fmt.Errorf("create temp output: %w", err)
		return res
	}
	defer out.Close()

	w := csv.NewWriter(out)
	w.UseCRLF = false
	if err := w.Write(feature.Columns); err != nil {
		res.err = fmt.Errorf("write header: %w", err)
		return res
	}

	table := flowtable.New(cfg.SweepEvery)
	var lastTS time.Time

	for {
		pkt, ci, ok := reader.Next()
		if !ok {
			break
		}
		classified, skip := packet.Classify(pkt, ci)
		if skip {
			continue
		}
		lastTS = classified.Timestamp

		sweepDue := table.Upsert(classified)
		if sweepDue {
			for _, rec := range table.Sweep(lastTS, cfg.FlowTimeout) {
				if err := writeFlow(w, rec); err != nil {
					res.err = fmt.Errorf("write evicted flow: %w", err)
					return res
				}
				res.flowsWritten++
			}
		}
	}

	for _, rec := range table.Drain() {
		if err := writeFlow(w, rec); err != nil {
			res.err = fmt.Errorf("write drained flow: %w", err)
			return res
		}
		res.flowsWritten++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		res.err = fmt.Errorf("flush output: %w", err)
		return res
	}

	if skipped := reader.Skipped(); skipped > 0 {
		minilog.Debug("orchestrator: %s skipped %d malformed packets", source, skipped)
	}

	return res
}

func writeFlow(w *csv.Writer, rec *flowtable.Record) error {
	f, ok := feature.Compute(rec)
	if !ok {
		return nil
	}
	return w.Write(feature.Row(f))
}
