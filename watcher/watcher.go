package watcher

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"time"

	"themeplane/theme"
)

// Watcher polls a themes directory and invokes a callback when any token
// document changes. Polling keeps the dev server free of platform-specific
// filesystem notification quirks.
type Watcher struct {
	dir      string
	interval time.Duration
	onChange func()
	state    map[string]stamp
}

type stamp struct {
	size    int64
	modTime time.Time
}

func New(dir string, interval time.Duration, onChange func()) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Watcher{
		dir:      dir,
		interval: interval,
		onChange: onChange,
	}
}

func (w *Watcher) Start(ctx context.Context) {
	go func() {
		log.Println("[watcher] started")

		// Prime the fingerprint so pre-existing files do not count as a change.
		w.state = w.scan()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[watcher] stopped")
				return
			case <-ticker.C:
				next := w.scan()
				if changed(w.state, next) {
					log.Println("[watcher] theme files changed, reloading")
					w.state = next
					w.onChange()
				}
			}
		}
	}()
}

// scan fingerprints every token document under the watched directory.
// Unreadable entries are skipped; editors drop transient files during saves.
func (w *Watcher) scan() map[string]stamp {
	state := make(map[string]stamp)

	_ = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := theme.FormatForPath(path); !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		state[path] = stamp{size: info.Size(), modTime: info.ModTime()}
		return nil
	})

	return state
}

func changed(prev, next map[string]stamp) bool {
	if len(prev) != len(next) {
		return true
	}
	for path, st := range next {
		if prev[path] != st {
			return true
		}
	}
	return false
}
