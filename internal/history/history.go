// Package history persists a capped, most-recent-first log of past
// board analyses, so a user running the CLI repeatedly against evolving
// boards can look back at what was suggested earlier.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MaxEntries bounds how many analyses the log retains; the oldest entry
// is dropped once a new one would exceed it.
const MaxEntries = 100

// Entry records one GeneralSolve/endgame.Solve invocation.
type Entry struct {
	Timestamp      string  `json:"timestamp"` // RFC3339, caller-supplied so callers control clock access
	Rows           int     `json:"rows"`
	Cols           int     `json:"cols"`
	Mines          int     `json:"mines"`
	CanEndgame     bool    `json:"can_endgame"`
	WinProbability float64 `json:"win_probability,omitempty"`
	BestRow        int     `json:"best_row"`
	BestCol        int     `json:"best_col"`
}

// Log stores the most-recent-first list of analyses.
type Log struct {
	Entries []Entry `json:"entries"`
}

// Store manages run-history persistence.
type Store struct {
	path string
	Log  Log
}

// Load reads the history file from the default location.
func Load() (*Store, error) {
	return LoadFrom("")
}

// LoadFrom reads history from a specific path. If path is empty, uses
// the default location (~/.mineprobe/history.json).
func LoadFrom(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return &Store{Log: Log{}}, err
		}
		path = filepath.Join(home, ".mineprobe", "history.json")
	}

	s := &Store{path: path, Log: Log{}}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is from UserHomeDir or test-controlled input
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}

	if err := json.Unmarshal(data, &s.Log); err != nil {
		return s, err
	}
	return s, nil
}

// Save writes the history to disk.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.Log, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Record prepends e to the log, trimming the tail once MaxEntries is
// exceeded.
func (s *Store) Record(e Entry) {
	s.Log.Entries = append([]Entry{e}, s.Log.Entries...)
	if len(s.Log.Entries) > MaxEntries {
		s.Log.Entries = s.Log.Entries[:MaxEntries]
	}
}

// Recent returns up to n of the most recent entries, most recent first.
func (s *Store) Recent(n int) []Entry {
	if n > len(s.Log.Entries) {
		n = len(s.Log.Entries)
	}
	return s.Log.Entries[:n]
}
