package penguin

import (
	"context"

	"github.com/penguindev/penguin/internal/plog"
	"github.com/penguindev/penguin/internal/watch"
)

// Watcher recursively watches a set of directories and publishes a Reload
// through its bound Controller once a burst of filesystem events settles.
type Watcher struct {
	inner *watch.Watcher
}

// Watch starts watching dirs, publishing Reload actions to the
// Controller's underlying control plane. The caller must call Run to
// begin processing events.
func (c Controller) Watch(dirs []string, log *plog.Logger) (*Watcher, error) {
	w, err := watch.New(dirs, c.actions, log)
	if err != nil {
		return nil, err
	}
	return &Watcher{inner: w}, nil
}

// Run processes filesystem events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	w.inner.Run(ctx)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.inner.Close()
}
