package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matsen/topictrace/internal/topic"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
// A run with many macro-topics is written on a single line.
const MaxJSONLLineCapacity = 1024 * 1024

// RunsFile is the run history file name inside the output directory.
const RunsFile = "runs.jsonl"

// RunRecord is one traced run in the history.
type RunRecord struct {
	RunID       string             `json:"run_id"`
	At          time.Time          `json:"at"`
	K           int                `json:"k"`
	Threshold   float64            `json:"threshold"`
	Merge       bool               `json:"merge"`
	Model       string             `json:"model"`
	Metric      string             `json:"metric"`
	MacroTopics []topic.MacroTopic `json:"macro_topics"`
}

// ReadRuns reads all run records from a JSONL file.
func ReadRuns(path string) ([]RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No runs persisted yet
		}
		return nil, fmt.Errorf("opening runs file: %w", err)
	}
	defer f.Close()

	var runs []RunRecord
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var run RunRecord
		if err := json.Unmarshal(line, &run); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		runs = append(runs, run)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading runs file: %w", err)
	}

	return runs, nil
}

// AppendRun adds a run record to the end of a JSONL file.
func AppendRun(path string, run RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run %s: %w", run.RunID, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening runs file for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing run %s: %w", run.RunID, err)
	}
	return nil
}

// FindRun searches for a run by ID or unique ID prefix.
func FindRun(runs []RunRecord, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	found := -1
	for i, run := range runs {
		if run.RunID == id {
			return i, true
		}
		if len(id) < len(run.RunID) && run.RunID[:len(id)] == id {
			if found >= 0 {
				return -1, false // Ambiguous prefix
			}
			found = i
		}
	}
	return found, found >= 0
}
