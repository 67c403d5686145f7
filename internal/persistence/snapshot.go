// Package persistence stores the policy state: JSON snapshot files for the
// in-memory collections plus an append-only SQLite journal for economic
// transactions and privileged actions.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Snapshots keeps one JSON file per collection under Dir. Writes go to a
// temp file in the same directory followed by an atomic rename, so a crash
// mid-write never leaves a half-written collection.
type Snapshots struct {
	Dir string
}

// NewSnapshots creates the snapshot directory if needed.
func NewSnapshots(dir string) (*Snapshots, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Snapshots{Dir: dir}, nil
}

// Save writes one collection.
func (s *Snapshots) Save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// Load reads one collection into v. A missing file leaves v at its default.
// A corrupt file is logged loudly and also leaves v at its default; the
// process keeps running with an empty collection rather than aborting.
func (s *Snapshots) Load(name string, v any) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		slog.Error("snapshot unreadable, starting this collection empty", "collection", name, "err", err)
		return
	}
	if !json.Valid(data) {
		slog.Error("snapshot corrupt, starting this collection empty", "collection", name)
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Error("snapshot does not match the collection shape, starting empty",
			"collection", name, "err", err)
	}
}

func (s *Snapshots) path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}
