// Package rawstore persists per-ward raw responses and the fetch stage's
// operational log.
package rawstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
)

// Store writes one file per ward, named by ward id, and appends timestamped
// lines to the fetch log. The raw fetch runs unattended for a long time, so
// the log is the only way to see where it got to.
type Store struct {
	dir     string
	logPath string
	clock   clockwork.Clock
}

// New creates a Store over dir with the given log path.
func New(dir, logPath string, clock clockwork.Clock) *Store {
	return &Store{dir: dir, logPath: logPath, clock: clock}
}

// SaveWard writes the verbatim response body for a ward, overwriting any
// previous fetch, and returns the file path.
func (s *Store) SaveWard(wardID string, body []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create raw data dir: %w", err)
	}
	path := filepath.Join(s.dir, wardID+".txt")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write raw ward file: %w", err)
	}
	return path, nil
}

// LogAttempt records that a ward fetch is starting.
func (s *Store) LogAttempt(wardID string) error {
	return s.appendLine(fmt.Sprintf("Attempting ward_id %s", wardID))
}

// LogSaved records that a ward's raw payload landed on disk.
func (s *Store) LogSaved(wardID, path string) error {
	return s.appendLine(fmt.Sprintf("Saved ward_id %s to %s", wardID, path))
}

func (s *Store) appendLine(msg string) error {
	f, err := os.OpenFile(s.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open fetch log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s - %s\n", s.clock.Now().Format("2006-01-02 15:04:05"), msg); err != nil {
		return fmt.Errorf("append fetch log: %w", err)
	}
	return nil
}

// WardFiles returns the raw file names in lexicographic order. Downstream
// deduplication relies on this order being stable across runs.
func (s *Store) WardFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list raw data dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadWard returns the verbatim body stored for one raw file name.
func (s *Store) ReadWard(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, name))
}
