// Package pipeline wires the Ingest Watcher, Orchestrator, Scorer,
// Router, and Retrainer Trigger into the Flow Scoring Pipeline's
// single-threaded cooperative polling loop (§5).
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/gigersam/nidspipe/internal/config"
	"github.com/gigersam/nidspipe/internal/minilog"
	"github.com/gigersam/nidspipe/internal/orchestrator"
	"github.com/gigersam/nidspipe/internal/retrain"
	"github.com/gigersam/nidspipe/internal/router"
	"github.com/gigersam/nidspipe/internal/scorer"
	"github.com/gigersam/nidspipe/internal/watcher"
)

// FSP is one process's worth of pipeline state: the loaded scorer, the
// router's upload plumbing, and the directory layout it polls.
type FSP struct {
	cfg      *config.Pipeline
	score    *scorer.Scorer
	uploader *router.Uploader
	sched    gocron.Scheduler
}

// New loads the scorer (bundle mandatory, models optional per §4.6)
// and prepares the uploader's token source.
func New(cfg *config.Pipeline) (*FSP, error) {
	sc, err := scorer.New(cfg.BundlePath(), cfg.ClassifierPath(), cfg.AnomalyPath())
	if err != nil {
		return nil, fmt.Errorf("load scorer: %w", err)
	}

	tokens := &router.TokenSource{BaseURL: cfg.APIBaseURL, Username: cfg.Username, Password: cfg.Password}
	uploader := &router.Uploader{BaseURL: cfg.APIBaseURL, Tokens: tokens}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &FSP{cfg: cfg, score: sc, uploader: uploader, sched: sched}, nil
}

// Run registers the polling job and blocks until stop is signalled.
func (p *FSP) Run(stop <-chan struct{}) error {
	_, err := p.sched.NewJob(
		gocron.DurationJob(p.cfg.PollInterval),
		gocron.NewTask(p.tick),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("register poll job: %w", err)
	}

	p.sched.Start()
	<-stop
	return p.sched.Shutdown()
}

// tick runs one full pass: retry uploads of suspicious batches left
// by earlier failed uploads, promote staged captures, convert them to
// features, score the result, route it, and retrain if warranted.
// Every stage logs and continues past its own failures so one bad
// batch never stalls the loop (§7).
func (p *FSP) tick() {
	pending, _ := filepath.Glob(filepath.Join(p.cfg.SuspiciousDir, "todo", "*"))
	for _, path := range pending {
		if err := p.uploader.Upload(path); err != nil {
			uploadFailures.Inc()
			minilog.Warn("pipeline: retry upload %s: %v", path, err)
			continue
		}
		if err := moveToDoneBestEffort(path, filepath.Join(p.cfg.SuspiciousDir, "done")); err != nil {
			minilog.Warn("pipeline: archive suspicious batch %s: %v", path, err)
		}
	}

	if err := p.promoteCaptures(); err != nil {
		minilog.Warn("pipeline: promote captures: %v", err)
	}

	csvPath, captureFiles, err := p.convertCaptures()
	if err != nil {
		minilog.Warn("pipeline: convert captures: %v", err)
	}
	if csvPath != "" {
		p.archiveCaptures(captureFiles)

		scoredPath, err := p.scoreCSV(csvPath)
		if err != nil {
			minilog.Warn("pipeline: score %s: %v", csvPath, err)
		} else {
			p.routeAndRetrain(scoredPath, csvPath)
		}
	}
}

func (p *FSP) promoteCaptures() error {
	promoted, err := watcher.Scan(watcher.Config{
		StagingDir:  filepath.Join(p.cfg.PcapDir, "staging"),
		TodoDir:     filepath.Join(p.cfg.PcapDir, "todo"),
		QuietPeriod: p.cfg.QuietPeriod,
	})
	filesPromoted.Add(float64(promoted))
	return err
}

// convertCaptures runs the orchestrator over every pending capture
// file and returns the merged CSV path plus the input files it
// consumed, so the caller can archive them once a merged CSV exists.
func (p *FSP) convertCaptures() (string, []string, error) {
	todoDir := filepath.Join(p.cfg.PcapDir, "todo")
	entries, err := os.ReadDir(todoDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("list pending captures: %w", err)
	}
	if len(entries) == 0 {
		return "", nil, nil
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(todoDir, e.Name()))
		}
	}

	outPath := filepath.Join(p.cfg.CSVDir, "todo", fmt.Sprintf("batch-%d.csv", time.Now().UnixNano()))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", nil, fmt.Errorf("create csv todo dir: %w", err)
	}

	summary, err := orchestrator.Run(todoDir, outPath, orchestrator.Config{
		FlowTimeout: p.cfg.FlowTimeout,
		SweepEvery:  p.cfg.SweepEvery,
	})
	if err != nil {
		return "", nil, err
	}

	flowsConverted.Add(float64(summary.FlowsWritten))
	if summary.FilesFailed > 0 {
		minilog.Warn("pipeline: %d/%d capture files failed conversion", summary.FilesFailed, summary.FilesTotal)
	}

	return outPath, files, nil
}

func (p *FSP) archiveCaptures(files []string) {
	doneDir := filepath.Join(p.cfg.PcapDir, "done")
	if err := os.MkdirAll(doneDir, 0o755); err != nil {
		minilog.Warn("pipeline: create pcap done dir: %v", err)
		return
	}
	for _, f := range files {
		dest := filepath.Join(doneDir, filepath.Base(f))
		if err := os.Rename(f, dest); err != nil {
			minilog.Warn("pipeline: archive %s: %v", f, err)
		}
	}
}

func (p *FSP) scoreCSV(csvPath string) (string, error) {
	scoredPath := filepath.Join(p.cfg.ScoredDir, filepath.Base(csvPath))
	if err := os.MkdirAll(p.cfg.ScoredDir, 0o755); err != nil {
		return "", fmt.Errorf("create scored output dir: %w", err)
	}
	if err := p.score.ScoreCSV(csvPath, scoredPath); err != nil {
		return "", err
	}
	rowsScored.Add(float64(countDataRows(scoredPath)))
	return scoredPath, nil
}

func (p *FSP) routeAndRetrain(scoredPath, originalCSVPath string) {
	res, err := router.Run(scoredPath, router.BatchConfig{
		Config: router.Config{
			Threshold:     p.cfg.Threshold,
			CorpusPath:    p.cfg.CorpusPath,
			SuspiciousDir: filepath.Join(p.cfg.SuspiciousDir, "todo"),
		},
		InputDoneDir:      filepath.Join(p.cfg.ScoredDir, "done"),
		SuspiciousDoneDir: filepath.Join(p.cfg.SuspiciousDir, "done"),
		Uploader:          p.uploader,
	})
	if err != nil {
		minilog.Warn("pipeline: route %s: %v", scoredPath, err)
		return
	}

	rowsRouted.WithLabelValues("benign").Add(float64(res.BenignCount))
	rowsRouted.WithLabelValues("suspicious").Add(float64(res.SuspiciousCount))
	if res.UploadFailed {
		uploadFailures.Inc()
		return // batch stays in place; retry on the next tick (§7, UploadFailed)
	}

	if err := moveToDoneBestEffort(originalCSVPath, filepath.Join(p.cfg.CSVDir, "done")); err != nil {
		minilog.Warn("pipeline: archive feature csv %s: %v", originalCSVPath, err)
	}

	if res.BenignCount > 0 {
		if err := retrain.Trigger(p.cfg.CorpusPath, retrain.Config{}); err != nil {
			retrainFailures.Inc()
			minilog.Warn("pipeline: retrain: %v", err)
		}
	}
}

func moveToDoneBestEffort(path, doneDir string) error {
	if err := os.MkdirAll(doneDir, 0o755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(doneDir, filepath.Base(path)))
}

// countDataRows counts lines in path beyond the header, for the
// rows-scored metric. A read failure yields zero rather than
// propagating, since the file was just written successfully upstream.
func countDataRows(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 {
		return 0
	}
	return len(lines) - 1
}
