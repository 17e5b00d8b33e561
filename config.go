// Package penguin is a dev HTTP server: static file mounts, an optional
// reverse proxy to an upstream origin, and a WebSocket control plane that
// pushes reload/message actions to connected browsers, with every HTML
// response transparently injected with a small client script.
package penguin

import (
	"errors"
	"fmt"

	"github.com/penguindev/penguin/internal/fileserver"
	"github.com/penguindev/penguin/internal/proxybackend"
)

// DefaultControlPath is the control-plane URI prefix used when none is
// configured explicitly.
const DefaultControlPath = "/~~penguin"

// Mount maps a URI path prefix to a filesystem directory.
type Mount = fileserver.Mount

// ProxyTarget is the scheme and authority of an upstream origin.
type ProxyTarget = proxybackend.Target

// ParseProxyTarget parses "SCHEME://AUTHORITY" into a ProxyTarget.
func ParseProxyTarget(raw string) (ProxyTarget, error) {
	return proxybackend.ParseTarget(raw)
}

// Config is Penguin's validated, immutable configuration.
type Config struct {
	BindAddr    string
	ControlPath string
	Mounts      []Mount
	Proxy       *ProxyTarget
}

var (
	// ErrEmptyConfig is returned when neither a proxy target nor any
	// mounts are configured.
	ErrEmptyConfig = errors.New("penguin: config must have a proxy target or at least one mount")

	// ErrMountAtRootWithProxy is returned when a mount at "/" is combined
	// with a proxy target.
	ErrMountAtRootWithProxy = errors.New("penguin: a mount at \"/\" cannot be combined with a proxy target")

	// ErrDuplicateMount is returned when two mounts share a URI path.
	ErrDuplicateMount = errors.New("penguin: duplicate mount URI path")
)

// Builder accumulates mounts and an optional proxy target, finalizing into
// a validated Config via Build.
type Builder struct {
	bindAddr    string
	controlPath string
	mounts      []Mount
	proxy       *ProxyTarget
}

// NewBuilder returns a Builder bound to bindAddr, with the default control
// path.
func NewBuilder(bindAddr string) *Builder {
	return &Builder{bindAddr: bindAddr, controlPath: DefaultControlPath}
}

// Mount adds a mount, normalizing its URI path.
func (b *Builder) Mount(uriPath, fsPath string) *Builder {
	b.mounts = append(b.mounts, Mount{URIPath: fileserver.NormalizeURIPath(uriPath), FSPath: fsPath})
	return b
}

// BindAddr overrides the bind address given to NewBuilder.
func (b *Builder) BindAddr(addr string) *Builder {
	b.bindAddr = addr
	return b
}

// Proxy sets the upstream proxy target.
func (b *Builder) Proxy(target ProxyTarget) *Builder {
	b.proxy = &target
	return b
}

// ControlPath overrides the default control-plane URI prefix.
func (b *Builder) ControlPath(path string) *Builder {
	b.controlPath = fileserver.NormalizeURIPath(path)
	return b
}

// Build validates the accumulated configuration and returns it, or the
// first invariant violation encountered.
func (b *Builder) Build() (Config, error) {
	if len(b.mounts) == 0 && b.proxy == nil {
		return Config{}, ErrEmptyConfig
	}

	seen := make(map[string]struct{}, len(b.mounts))
	for _, m := range b.mounts {
		if _, dup := seen[m.URIPath]; dup {
			return Config{}, fmt.Errorf("%w: %q", ErrDuplicateMount, m.URIPath)
		}
		seen[m.URIPath] = struct{}{}

		if m.URIPath == "/" && b.proxy != nil {
			return Config{}, ErrMountAtRootWithProxy
		}
	}

	return Config{
		BindAddr:    b.bindAddr,
		ControlPath: b.controlPath,
		Mounts:      append([]Mount(nil), b.mounts...),
		Proxy:       b.proxy,
	}, nil
}
