// Package watch drives reload actions from filesystem changes: it watches
// a set of directories with fsnotify and publishes a debounced Reload once
// events settle, the same role air's coffer watcher and the fsnotify-based
// live-reload example play for their own template/asset trees.
package watch

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/penguindev/penguin/internal/action"
	"github.com/penguindev/penguin/internal/broadcast"
	"github.com/penguindev/penguin/internal/plog"
)

// DefaultDebounce is how long Watcher waits after the last filesystem
// event before publishing a single Reload, coalescing a burst of writes
// (e.g. a build tool rewriting many files) into one browser reload.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches a set of directories and publishes Reload actions.
type Watcher struct {
	fsw      *fsnotify.Watcher
	actions  *broadcast.Broadcaster[action.Action]
	log      *plog.Logger
	debounce time.Duration
}

// New returns a Watcher that recursively watches each of dirs and
// publishes to actions. The caller must call Run to start processing
// events, and Close when done.
func New(dirs []string, actions *broadcast.Broadcaster[action.Action], log *plog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := addRecursive(fsw, dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return &Watcher{fsw: fsw, actions: actions, log: log, debounce: DefaultDebounce}, nil
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return walkDirs(root, func(dir string) error {
		return fsw.Add(dir)
	})
}

// Run processes filesystem events until ctx is canceled, publishing a
// debounced Reload after each settled burst.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer

	fire := func() {
		w.actions.Publish(action.NewReload())
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			w.log.Debugf("watch: %s %s", ev.Op, ev.Name)

			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("watch: %v", err)
		}
	}
}

// Close stops watching and releases the underlying fsnotify resources.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
