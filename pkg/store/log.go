package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// Log is the append-only per-session iteration log backed by a single JSON
// array file (spec §4.4, §8 invariant 7: exactly one record per sequence
// number reached, in insertion order). It also keeps the in-memory rolling
// window the prompt assembler reads.
type Log struct {
	path    string
	records []Record
}

// OpenLog loads an existing log file if present (a resumed session would
// find one; a fresh session will not) and prepares to append to path.
func OpenLog(path string) (*Log, error) {
	l := &Log{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read iteration log: %w", err)
	}
	if len(data) == 0 {
		return l, nil
	}
	if err := json.Unmarshal(data, &l.records); err != nil {
		return nil, fmt.Errorf("store: parse iteration log: %w", err)
	}
	return l, nil
}

// Append adds rec to the in-memory log and rewrites the log file. The spec
// models this as an append; because the persisted form is a single JSON
// array rather than JSON-lines, the implementation rewrites the whole file
// each time, which is correct but O(n) in session length — acceptable given
// the rolling-window sizes involved.
func (l *Log) Append(rec Record) error {
	l.records = append(l.records, rec)
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal iteration log: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("store: write iteration log: %w", err)
	}
	return nil
}

// Len returns the total number of records appended so far.
func (l *Log) Len() int { return len(l.records) }

// NextSeq returns the sequence number the next Append call should use.
func (l *Log) NextSeq() int { return len(l.records) }

// Window returns the last WindowSize records (spec §3, §4.7), oldest first.
func (l *Log) Window() []Record {
	if len(l.records) <= WindowSize {
		return append([]Record(nil), l.records...)
	}
	return append([]Record(nil), l.records[len(l.records)-WindowSize:]...)
}

// BriefWindow returns the last BriefLookback records fed to a history-brief
// regeneration, oldest first.
func (l *Log) BriefWindow() []Record {
	if len(l.records) <= BriefLookback {
		return append([]Record(nil), l.records...)
	}
	return append([]Record(nil), l.records[len(l.records)-BriefLookback:]...)
}

// ShouldRegenerateBrief reports whether the iteration about to run, numbered
// by its record sequence number (the TASK record is 0), should first
// regenerate the history brief, matching the control loop's
// "iteration % 10 == 9" check.
func ShouldRegenerateBrief(iteration int) bool {
	return iteration%BriefInterval == BriefInterval-1
}
