package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"themeplane/model"
)

// Store provides persistent storage for theme snapshots.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// New creates a new Store instance with the given base directory.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// EnsureDirs creates the necessary directory structure for storing snapshots.
func (s *Store) EnsureDirs() error {
	return os.MkdirAll(filepath.Join(s.baseDir, "snapshots"), 0o755)
}

// SaveSnapshot saves a snapshot to disk, organizing files by date.
func (s *Store) SaveSnapshot(snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Timestamp.IsZero() {
		return fmt.Errorf("snapshot has no timestamp")
	}
	t := snap.Timestamp.UTC()
	dir := filepath.Join(
		s.baseDir,
		"snapshots",
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	filename := t.Format("2006-01-02T15-04-05Z07-00")
	if snap.ID != "" {
		// Applies can land within the same second; the id keeps them apart.
		filename += "-" + strings.SplitN(snap.ID, "-", 2)[0]
	}
	path := filepath.Join(dir, filename+".json")

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ListSnapshots retrieves all snapshots within the specified time range.
// Snapshots are sorted by timestamp in ascending order.
func (s *Store) ListSnapshots(from, to time.Time) ([]model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = from.UTC()
	to = to.UTC()

	base := filepath.Join(s.baseDir, "snapshots")
	var snaps []model.Snapshot

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		var snap model.Snapshot
		if err := json.NewDecoder(f).Decode(&snap); err != nil {
			return err
		}
		if snap.Timestamp.IsZero() {
			return nil
		}

		t := snap.Timestamp.UTC()
		if t.Before(from) || t.After(to) {
			return nil
		}

		snaps = append(snaps, snap)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})

	return snaps, nil
}
