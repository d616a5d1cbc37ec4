// Package watch monitors the source and partials directories and triggers
// debounced rebuilds when files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Watcher monitors directory trees and coalesces bursts of file events into a
// single rebuild trigger after a quiet window.
type Watcher struct {
	dirs         []string
	watcher      *fsnotify.Watcher
	onChange     func()
	debounceTime time.Duration
	triggerChan  chan struct{}
}

// NewWatcher creates a watcher over the given directory trees. onChange is
// invoked from the watcher goroutine after each debounced burst of events.
func NewWatcher(dirs []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		dirs:         dirs,
		watcher:      fsWatcher,
		onChange:     onChange,
		debounceTime: debounce,
		triggerChan:  make(chan struct{}, 1),
	}, nil
}

// Start begins monitoring. It adds every subdirectory of the configured trees
// (fsnotify is not recursive) and watches newly created directories as they
// appear. Blocks until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}

	slog.Info("Watching for changes", "dirs", strings.Join(w.dirs, ", "))

	go w.debounceLoop(ctx)
	w.watchLoop(ctx)
	return nil
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories must be added to the watch set; everything else just
	// trips the debounce.
	if event.Op.Has(fsnotify.Create) {
		if err := w.addRecursive(event.Name); err != nil {
			slog.Debug("Skipping watch of created path", logfields.Path(event.Name), logfields.Error(err))
		}
	}
	if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		slog.Debug("Change detected", logfields.Path(event.Name), "op", event.Op.String())
		w.trigger()
	}
}

func (w *Watcher) trigger() {
	select {
	case w.triggerChan <- struct{}{}:
	default: // a trigger is already pending
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.triggerChan:
			if !timer.Stop() && pending {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounceTime)
			pending = true
		case <-timer.C:
			if pending {
				pending = false
				w.onChange()
			}
		}
	}
}
