package router

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gigersam/nidspipe/internal/minilog"
)

// BatchConfig extends Config with the done-directory moves and the
// uploader the full router pass (not just Split) needs.
type BatchConfig struct {
	Config
	InputDoneDir      string
	SuspiciousDoneDir string
	Uploader          *Uploader
}

// Run splits scoredCSVPath, uploads any suspicious batch, and moves
// both the suspicious batch and the scored input to their done areas
// on success. A failed upload is not an error the caller should treat
// as task-fatal: it leaves the suspicious batch in SuspiciousDir for
// the next loop iteration (§7, UploadFailed) and does not move the
// scored input, since the batch is not yet fully processed.
func Run(scoredCSVPath string, cfg BatchConfig) (Result, error) {
	res, err := Split(scoredCSVPath, cfg.Config)
	if err != nil {
		return Result{}, err
	}

	if res.SuspiciousPath != "" {
		if err := cfg.Uploader.Upload(res.SuspiciousPath); err != nil {
			minilog.Warn("router: upload failed for %s, leaving in place: %v", res.SuspiciousPath, err)
			res.UploadFailed = true
			return res, nil
		}
		if err := moveToDone(res.SuspiciousPath, cfg.SuspiciousDoneDir); err != nil {
			return res, fmt.Errorf("move suspicious batch to done: %w", err)
		}
	}

	if err := moveToDone(scoredCSVPath, cfg.InputDoneDir); err != nil {
		return res, fmt.Errorf("move scored input to done: %w", err)
	}

	return res, nil
}

func moveToDone(path, doneDir string) error {
	if err := os.MkdirAll(doneDir, 0o755); err != nil {
		return fmt.Errorf("create done directory: %w", err)
	}
	dest := filepath.Join(doneDir, filepath.Base(path))
	return os.Rename(path, dest)
}
