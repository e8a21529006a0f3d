// Package retrain invokes the out-of-scope anomaly-model training job
// after the router appends new benign rows to the training corpus.
package retrain

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/gigersam/nidspipe/internal/minilog"
)

// Config names the trainer binary and how long one run may take.
// TrainerPath defaults to "flowtrain" on PATH; Timeout defaults to 10
// minutes.
type Config struct {
	TrainerPath string
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.TrainerPath == "" {
		c.TrainerPath = "flowtrain"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Minute
	}
	return c
}

// Trigger runs the trainer synchronously against corpusPath, retraining
// only the anomaly model (the router only ever appends benign rows, so
// there is nothing new to retrain the classifier on). Per §4.8, a
// failure here is logged and returned for the caller to count; it is
// not fatal to the pipeline loop, and the next batch that appends
// benign rows re-triggers.
func Trigger(corpusPath string, cfg Config) error {
	cfg = cfg.withDefaults()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.TrainerPath,
		"train", "--train-if", "--if-data", corpusPath)

	output, err := cmd.CombinedOutput()
	if err != nil {
		minilog.Error("retrain: trainer failed for corpus %s: %v\n%s", corpusPath, err, output)
		return fmt.Errorf("run trainer: %w", err)
	}

	minilog.Info("retrain: anomaly model retrained from %s", corpusPath)
	return nil
}
