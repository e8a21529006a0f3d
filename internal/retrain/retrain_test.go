package retrain

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeTrainer builds a tiny script masquerading as the trainer binary,
// exiting 0 when succeed is true and 1 otherwise, so Trigger's
// success/failure paths can be exercised without a real training job.
func fakeTrainer(t *testing.T, succeed bool) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("fake trainer script requires a POSIX shell")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "flowtrain")
	script := "#!/bin/sh\necho trained\nexit 0\n"
	if !succeed {
		script = "#!/bin/sh\necho boom 1>&2\nexit 1\n"
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake trainer: %v", err)
	}
	return path
}

func TestTriggerSuccess(t *testing.T) {
	trainer := fakeTrainer(t, true)
	if err := Trigger("corpus.csv", Config{TrainerPath: trainer}); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
}

func TestTriggerFailureIsReportedNotPanicked(t *testing.T) {
	trainer := fakeTrainer(t, false)
	if err := Trigger("corpus.csv", Config{TrainerPath: trainer}); err == nil {
		t.Fatal("expected an error from a failing trainer")
	}
}
