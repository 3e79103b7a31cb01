// Package watch reports changes other processes make to a scope. It watches
// the directory holding the scope file with fsnotify, so atomic
// rename-based rewrites are seen, and diffs snapshots of the scope.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/go-pkgz/lgr"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Op is the kind of change to a key.
type Op string

// Change kinds.
const (
	Added   Op = "added"
	Updated Op = "updated"
	Removed Op = "removed"
)

// Change describes one key that differs between two snapshots.
type Change struct {
	Op  Op     `json:"op"`
	Key string `json:"key"`
	Old string `json:"old,omitempty"`
	New string `json:"new,omitempty"`
}

// Snapshot reads every entry of the backend's scope. Backends that cache
// the scope are reloaded first.
func Snapshot(b types.Backend) (map[string]string, error) {
	if r, ok := b.(types.Reloader); ok {
		if err := r.Reload(); err != nil {
			return nil, fmt.Errorf("reload: %w", err)
		}
	}
	keys, err := b.Keys()
	if err != nil {
		return nil, err
	}
	snap := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := b.GetItem(k)
		if err != nil {
			return nil, err
		}
		if ok {
			snap[k] = v
		}
	}
	return snap, nil
}

// Diff returns the changes turning prev into next, ordered by key.
func Diff(prev, next map[string]string) []Change {
	var changes []Change
	for k, nv := range next {
		ov, ok := prev[k]
		switch {
		case !ok:
			changes = append(changes, Change{Op: Added, Key: k, New: nv})
		case ov != nv:
			changes = append(changes, Change{Op: Updated, Key: k, Old: ov, New: nv})
		}
	}
	for k, ov := range prev {
		if _, ok := next[k]; !ok {
			changes = append(changes, Change{Op: Removed, Key: k, Old: ov})
		}
	}
	slices.SortFunc(changes, func(a, b Change) int { return strings.Compare(a.Key, b.Key) })
	return changes
}

// Watcher calls back when the file at Path, or a file sharing its name as a
// prefix (such as a SQLite -wal file), is written, created, renamed or removed.
type Watcher struct {
	Path string
	// Debounce coalesces bursts of events into one callback.
	Debounce time.Duration
}

// DefaultDebounce is used when Watcher.Debounce is zero.
const DefaultDebounce = 50 * time.Millisecond

// Run watches until ctx is done, calling onChange after each burst of
// relevant events. It returns nil on cancellation and the first error
// returned by onChange or the watcher otherwise.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir, base := filepath.Split(w.Path)
	if dir == "" {
		dir = "."
	}
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) || ev.Op&relevant == 0 {
				continue
			}
			log.Printf("[DEBUG] %s %s", ev.Op, ev.Name)
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.Path, err)
		case <-timer.C:
			if err := onChange(); err != nil {
				return err
			}
		}
	}
}
