package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/matsen/topictrace/internal/topic"
	"github.com/matsen/topictrace/internal/trace"
)

// TraceFileName returns the trace log name for a topic budget and threshold.
func TraceFileName(k int, threshold float64) string {
	return fmt.Sprintf("tracing_k%d_t%s.log", k, strconv.FormatFloat(threshold, 'f', -1, 64))
}

// MacroFileName returns the macro-topic log name for a topic budget.
func MacroFileName(k int) string {
	return fmt.Sprintf("main_k%d.log", k)
}

// File appends trace blocks to the trace log of one run.
// Earlier runs in the same file are kept; each run starts with a header line.
type File struct {
	RunID string
	Path  string

	f  *os.File
	st styles
}

// OpenFile opens (creating if needed) the trace log in dir and writes the
// run header.
func OpenFile(dir string, k int, threshold float64) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, TraceFileName(k, threshold))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening trace log: %w", err)
	}

	file := &File{RunID: uuid.NewString(), Path: path, f: f, st: newStyles(f)}
	if err := writeRunHeader(f, file.RunID); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing run header: %w", err)
	}
	return file, nil
}

func (f *File) Report(b trace.Block) error {
	if err := writeBlock(f.f, f.st, b); err != nil {
		return fmt.Errorf("writing trace log: %w", err)
	}
	return nil
}

// Close flushes the log to disk and closes it.
func (f *File) Close() error {
	if err := f.f.Sync(); err != nil {
		f.f.Close()
		return fmt.Errorf("syncing trace log: %w", err)
	}
	return f.f.Close()
}

func writeRunHeader(w *os.File, runID string) error {
	_, err := fmt.Fprintf(w, "=== run %s %s ===\n\n", runID, time.Now().UTC().Format(time.RFC3339))
	return err
}

// AppendMacroTopics appends the macro-topic list to main_k<K>.log in dir under
// a run header and returns the file path.
func AppendMacroTopics(dir string, macros []topic.MacroTopic, k int, runID string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	path := filepath.Join(dir, MacroFileName(k))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("opening macro-topic log: %w", err)
	}
	defer f.Close()

	if err := writeRunHeader(f, runID); err != nil {
		return "", fmt.Errorf("writing run header: %w", err)
	}
	if err := WriteMacroTopics(f, macros, k); err != nil {
		return "", fmt.Errorf("writing macro-topics: %w", err)
	}
	return path, nil
}
