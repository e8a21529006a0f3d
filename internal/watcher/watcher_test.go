package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
}

func TestScanPromotesOnlyQuietFiles(t *testing.T) {
	staging := t.TempDir()
	todo := t.TempDir()
	now := time.Now()

	touch(t, filepath.Join(staging, "old.pcap"), now.Add(-45*time.Minute))
	touch(t, filepath.Join(staging, "fresh.pcap"), now.Add(-5*time.Minute))

	cfg := Config{StagingDir: staging, TodoDir: todo, now: func() time.Time { return now }}
	promoted, err := Scan(cfg)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if promoted != 1 {
		t.Fatalf("promoted = %d, want 1", promoted)
	}

	if _, err := os.Stat(filepath.Join(todo, "old.pcap")); err != nil {
		t.Fatalf("old.pcap not promoted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(staging, "fresh.pcap")); err != nil {
		t.Fatalf("fresh.pcap should remain staged: %v", err)
	}
	if _, err := os.Stat(filepath.Join(staging, "old.pcap")); !os.IsNotExist(err) {
		t.Fatal("old.pcap should have been moved out of staging")
	}
}

func TestScanIsIdempotentOnRepeatedCalls(t *testing.T) {
	staging := t.TempDir()
	todo := t.TempDir()
	now := time.Now()

	touch(t, filepath.Join(staging, "old.pcap"), now.Add(-45*time.Minute))
	cfg := Config{StagingDir: staging, TodoDir: todo, now: func() time.Time { return now }}

	if _, err := Scan(cfg); err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	promoted, err := Scan(cfg)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if promoted != 0 {
		t.Fatalf("second scan promoted = %d, want 0", promoted)
	}
}

func TestScanCustomQuietPeriod(t *testing.T) {
	staging := t.TempDir()
	todo := t.TempDir()
	now := time.Now()

	touch(t, filepath.Join(staging, "recent.pcap"), now.Add(-2*time.Minute))
	cfg := Config{StagingDir: staging, TodoDir: todo, QuietPeriod: time.Minute, now: func() time.Time { return now }}

	promoted, err := Scan(cfg)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if promoted != 1 {
		t.Fatalf("promoted = %d, want 1 with a 1-minute quiet period", promoted)
	}
}
