// Package watcher promotes capture files from a staging area into the
// Flow Feature Extractor's todo directory once the sensor has
// finished writing them.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gigersam/nidspipe/internal/minilog"
)

// DefaultQuietPeriod is Q (§4.9): how long a file's mtime must be
// unchanged before it is considered closed by the sensor.
const DefaultQuietPeriod = 30 * time.Minute

// Config names the staging and destination directories and the
// quiescence window.
type Config struct {
	StagingDir   string
	TodoDir      string
	QuietPeriod  time.Duration
	now          func() time.Time // overridable for tests
}

func (c Config) withDefaults() Config {
	if c.QuietPeriod == 0 {
		c.QuietPeriod = DefaultQuietPeriod
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Scan examines every entry in StagingDir and atomically renames the
// ready ones into TodoDir. The rename is the only synchronisation
// primitive: two watchers racing the same file will have exactly one
// winning Rename, and os.Rename's error on the loser is swallowed as
// "someone else already took it".
func Scan(cfg Config) (promoted int, err error) {
	cfg = cfg.withDefaults()

	entries, err := os.ReadDir(cfg.StagingDir)
	if err != nil {
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	if err := os.MkdirAll(cfg.TodoDir, 0o755); err != nil {
		return 0, fmt.Errorf("create todo dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			minilog.Warn("watcher: stat %s: %v", entry.Name(), err)
			continue
		}
		if cfg.now().Sub(info.ModTime()) < cfg.QuietPeriod {
			continue
		}

		src := filepath.Join(cfg.StagingDir, entry.Name())
		dst := filepath.Join(cfg.TodoDir, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			if os.IsNotExist(err) {
				continue // another watcher already promoted it
			}
			minilog.Warn("watcher: promote %s: %v", src, err)
			continue
		}
		minilog.Info("watcher: promoted %s", entry.Name())
		promoted++
	}

	return promoted, nil
}
