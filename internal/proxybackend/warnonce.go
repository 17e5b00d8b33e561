package proxybackend

import (
	"github.com/penguindev/penguin/internal/cache"
	"github.com/penguindev/penguin/internal/plog"
)

// warnOnce logs a warning at most once per distinct key (e.g. a specific
// unknown Content-Encoding value), so a noisy upstream repeatedly sending
// the same unsupported encoding doesn't flood the log on every request. It
// reuses the same in-memory cache primitive the asset cache is built on,
// keyed by an xxhash digest of the warning's identity.
type warnOnce struct {
	seen *cache.Cache
	log  *plog.Logger
}

func newWarnOnce(log *plog.Logger) *warnOnce {
	return &warnOnce{seen: cache.New(64 * 1024), log: log}
}

func (w *warnOnce) warnf(key, format string, args ...interface{}) {
	k := cache.Key(key)
	if _, ok := w.seen.Get(k); ok {
		return
	}
	w.seen.Set(k, []byte{1})
	w.log.Warnf(format, args...)
}
