package penguin

import (
	"context"
	"errors"
	"net"
	"net/http"

	penguinaction "github.com/penguindev/penguin/internal/action"
	"github.com/penguindev/penguin/internal/broadcast"
	"github.com/penguindev/penguin/internal/fileserver"
	"github.com/penguindev/penguin/internal/plog"
	"github.com/penguindev/penguin/internal/proxybackend"
	"golang.org/x/sync/errgroup"
)

// Server is a one-shot awaitable representing the listening task. Wait
// blocks until the server stops, returning nil on a clean Shutdown or the
// first terminal error (a bind/transport error from the listener).
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	group      *errgroup.Group
	cancel     context.CancelFunc
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Wait blocks until the server's listener goroutine returns, which happens
// on Shutdown or on a terminal listener error.
func (s *Server) Wait() error {
	return s.group.Wait()
}

// Shutdown gracefully stops the HTTP listener. It does not wait for
// existing WebSocket sessions to close; see aofei-air's own Shutdown
// documentation for the same caveat about hijacked connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	return s.httpServer.Shutdown(ctx)
}

// Build validates config and constructs a Server and a Controller handle
// bound to it, per the library surface: build(config) -> (Server,
// Controller).
func Build(ctx context.Context, config Config, log *plog.Logger) (*Server, Controller, error) {
	if log == nil {
		log = plog.Default()
	}

	if err := validateBuilt(config); err != nil {
		return nil, Controller{}, err
	}

	actions := broadcast.New[penguinaction.Action](ActionChannelCapacity)
	controller := Controller{actions: actions}

	ctx, cancel := context.WithCancel(ctx)

	rt := &router{
		controlPath: config.ControlPath,
		actions:     actions,
		log:         log,
	}

	if len(config.Mounts) > 0 {
		rt.files = &fileserver.Server{
			Mounts:      config.Mounts,
			ControlPath: config.ControlPath,
			Log:         log,
		}
	}

	if config.Proxy != nil {
		// ctx, not a per-request context: the poller this Server may
		// start must outlive any single request and only stop when
		// the server itself does.
		rt.proxy = proxybackend.NewServer(ctx, *config.Proxy, config.ControlPath, actions, log)
	}

	listener, err := net.Listen("tcp", config.BindAddr)
	if err != nil {
		cancel()
		return nil, Controller{}, err
	}

	httpServer := &http.Server{Handler: rt}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})

	return &Server{
		httpServer: httpServer,
		listener:   listener,
		group:      group,
		cancel:     cancel,
	}, controller, nil
}

func validateBuilt(config Config) error {
	if len(config.Mounts) == 0 && config.Proxy == nil {
		return ErrEmptyConfig
	}

	seen := make(map[string]struct{}, len(config.Mounts))
	for _, m := range config.Mounts {
		if _, dup := seen[m.URIPath]; dup {
			return ErrDuplicateMount
		}
		seen[m.URIPath] = struct{}{}

		if m.URIPath == "/" && config.Proxy != nil {
			return ErrMountAtRootWithProxy
		}
	}

	return nil
}
