package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is the on-disk layout of a store: one object with exactly the
// three category mappings. Save writes the full current state; Load reads
// it back wholesale.
type Snapshot struct {
	Words     map[string]float64 `json:"words"`
	Phrases   map[string]float64 `json:"phrases"`
	GameIdeas map[string]float64 `json:"game_ideas"`
}

// EmptySnapshot returns a snapshot with all three mappings empty.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Words:     map[string]float64{},
		Phrases:   map[string]float64{},
		GameIdeas: map[string]float64{},
	}
}

// LoadStatus distinguishes the three outcomes of loading a snapshot file.
type LoadStatus int

const (
	// StatusLoaded means the file existed and parsed cleanly.
	StatusLoaded LoadStatus = iota

	// StatusAbsent means no file existed. This is the normal first-run
	// state, not an error.
	StatusAbsent

	// StatusCorrupt means the file existed but could not be parsed. The
	// caller decides whether to fall back to an empty store; the failure
	// is surfaced rather than swallowed.
	StatusCorrupt
)

// LoadSnapshot reads a snapshot file. A missing file yields StatusAbsent
// with an empty snapshot and no error. An unreadable or unparsable file
// yields StatusCorrupt along with the underlying error.
func LoadSnapshot(path string) (Snapshot, LoadStatus, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return EmptySnapshot(), StatusAbsent, nil
	}
	if err != nil {
		return EmptySnapshot(), StatusCorrupt, fmt.Errorf("memory: read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return EmptySnapshot(), StatusCorrupt, fmt.Errorf("memory: parse snapshot %s: %w", path, err)
	}
	if snap.Words == nil {
		snap.Words = map[string]float64{}
	}
	if snap.Phrases == nil {
		snap.Phrases = map[string]float64{}
	}
	if snap.GameIdeas == nil {
		snap.GameIdeas = map[string]float64{}
	}
	return snap, StatusLoaded, nil
}

// SaveSnapshot writes the snapshot to path, creating the parent directory
// if needed. The write goes through a temp file and rename so a crash
// mid-write never truncates the previous snapshot.
func SaveSnapshot(path string, snap Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("memory: create snapshot dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("memory: create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("memory: write snapshot: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("memory: chmod snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("memory: close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("memory: replace snapshot %s: %w", path, err)
	}
	return nil
}
