package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/upkeep/pkg/cargo"
	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// DefaultDebounce collapses bursts of writes into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to one file.
//
// The parent directory is watched rather than the file itself, so the
// watch survives editors and tools that replace the file by renaming a
// temporary over it.
type Watcher struct {
	path     string
	debounce time.Duration
	fw       *fsnotify.Watcher
}

// NewWatcher starts watching path. Stdin cannot be watched.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if path == cargo.StdinPath || path == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "cannot watch stdin; pass a graph file")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "create file watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "watch %s", filepath.Dir(abs))
	}
	return &Watcher{path: abs, debounce: debounce, fw: fw}, nil
}

// Run calls onChange after each debounced burst of events on the file,
// until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			onChange()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			return errs.Wrap(errs.ErrCodeInternal, err, "watch %s", w.path)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// Close stops watching.
func (w *Watcher) Close() error { return w.fw.Close() }
