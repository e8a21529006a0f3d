package orchestrator

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/gigersam/nidspipe/internal/feature"
	"github.com/gigersam/nidspipe/internal/minilog"
)

// mergeTempFiles writes the shared header once, then concatenates each
// temp file's body (skipping its own header line) into outputPath.
func mergeTempFiles(tempFiles []string, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)

	header := feature.Columns
	if _, err := w.WriteString(csvJoin(header) + "\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, path := range tempFiles {
		if err := appendBody(w, path); err != nil {
			minilog.Warn("orchestrator: merging %s: %v", path, err)
			continue
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush merged output: %w", err)
	}
	return nil
}

// appendBody copies every line of path after its first (header) line
// into w.
func appendBody(w *bufio.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if _, err := r.ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("skip header: %w", err)
	}

	_, err = io.Copy(w, r)
	return err
}

func csvJoin(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return out
}
