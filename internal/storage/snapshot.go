package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"market_go/internal/engine"
)

// SnapshotManager writes and reads book snapshots as JSON files, one per
// capture, named by the day and event sequence they were taken at.
type SnapshotManager struct {
	dir string
}

// NewSnapshotManager creates a snapshot manager rooted at dir.
func NewSnapshotManager(dir string) *SnapshotManager {
	return &SnapshotManager{dir: dir}
}

// Save writes a snapshot to disk.
func (sm *SnapshotManager) Save(snap *engine.Snapshot) error {
	if err := os.MkdirAll(sm.dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	filename := fmt.Sprintf("book_%d_%d.json", snap.Day, snap.Seq)
	path := filepath.Join(sm.dir, filename)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	slog.Info("Snapshot saved",
		slog.Int("day", snap.Day),
		slog.String("path", path))
	return nil
}

// LoadLatest loads the snapshot with the highest (day, seq) pair. Returns
// nil when no snapshot exists.
func (sm *SnapshotManager) LoadLatest() (*engine.Snapshot, error) {
	files, err := sm.list()
	if err != nil || len(files) == 0 {
		return nil, err
	}

	latest := files[len(files)-1]
	data, err := os.ReadFile(latest.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	slog.Info("Snapshot loaded",
		slog.Int("day", snap.Day),
		slog.String("path", latest.path))
	return &snap, nil
}

// Cleanup removes old snapshots, keeping only the latest keepCount.
func (sm *SnapshotManager) Cleanup(keepCount int) error {
	files, err := sm.list()
	if err != nil {
		return err
	}
	if len(files) <= keepCount {
		return nil
	}

	for _, f := range files[:len(files)-keepCount] {
		if err := os.Remove(f.path); err != nil {
			slog.Warn("Failed to remove old snapshot", slog.String("path", f.path))
		}
	}
	return nil
}

type snapFile struct {
	path string
	day  int
	seq  uint64
}

// list returns snapshot files sorted oldest first.
func (sm *SnapshotManager) list() ([]snapFile, error) {
	entries, err := os.ReadDir(sm.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot dir: %w", err)
	}

	var files []snapFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var day int
		var seq uint64
		if _, err := fmt.Sscanf(entry.Name(), "book_%d_%d.json", &day, &seq); err != nil {
			continue // not a snapshot file
		}
		files = append(files, snapFile{
			path: filepath.Join(sm.dir, entry.Name()),
			day:  day,
			seq:  seq,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].day != files[j].day {
			return files[i].day < files[j].day
		}
		return files[i].seq < files[j].seq
	})
	return files, nil
}
