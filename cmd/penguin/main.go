// Command penguin runs a standalone Penguin dev server from the command
// line: static mounts, an optional reverse proxy, and the WebSocket
// control plane that drives browser reloads, wired together the same way
// the programmatic penguin.Build entry point assembles them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penguindev/penguin"
	"github.com/penguindev/penguin/internal/plog"
)

type flags struct {
	bind        string
	controlPath string
	mounts      []string
	proxy       string
	configFile  string
	watchDirs   []string
	open        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "penguin",
		Short: "Penguin serves static files and/or proxies an upstream origin, reloading browsers on change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.bind, "bind", "127.0.0.1:0", "address to listen on")
	cmd.Flags().StringVar(&f.controlPath, "control-path", "", "URI prefix for the control plane (default \"/~~penguin\")")
	cmd.Flags().StringArrayVar(&f.mounts, "mount", nil, "URI_PATH=FS_PATH, repeatable")
	cmd.Flags().StringVar(&f.proxy, "proxy", "", "upstream origin, SCHEME://AUTHORITY")
	cmd.Flags().StringVar(&f.configFile, "config", "", "path to a .json/.toml/.yaml config file")
	cmd.Flags().StringArrayVar(&f.watchDirs, "watch", nil, "directory to watch for changes and trigger a reload, repeatable")
	cmd.Flags().BoolVar(&f.open, "open", false, "open the served address in a browser once listening")

	return cmd
}

func run(ctx context.Context, f *flags) error {
	log := plog.Default()

	builder := penguin.NewBuilder(f.bind)

	if f.configFile != "" {
		fc, err := penguin.LoadConfigFile(f.configFile)
		if err != nil {
			return fmt.Errorf("penguin: loading %s: %w", f.configFile, err)
		}
		if builder, err = fc.ApplyTo(builder); err != nil {
			return err
		}
		f.watchDirs = append(f.watchDirs, fc.Watch...)
	}

	for _, m := range f.mounts {
		uriPath, fsPath, err := splitMount(m)
		if err != nil {
			return err
		}
		builder.Mount(uriPath, fsPath)
	}

	if f.controlPath != "" {
		builder.ControlPath(f.controlPath)
	}

	if f.proxy != "" {
		target, err := penguin.ParseProxyTarget(f.proxy)
		if err != nil {
			return fmt.Errorf("penguin: --proxy: %w", err)
		}
		builder.Proxy(target)
	}

	config, err := builder.Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, controller, err := penguin.Build(ctx, config, log)
	if err != nil {
		return err
	}

	if len(f.watchDirs) > 0 {
		w, err := controller.Watch(f.watchDirs, log)
		if err != nil {
			return fmt.Errorf("penguin: starting watch: %w", err)
		}
		go w.Run(ctx)
		defer w.Close()
	}

	log.Infof("penguin: listening on %s", srv.Addr())

	if f.open {
		openBrowser(addrToURL(srv.Addr().String()))
	}

	return srv.Wait()
}

func splitMount(spec string) (uriPath, fsPath string, err error) {
	idx := strings.IndexByte(spec, '=')
	if idx < 0 {
		return "", "", fmt.Errorf("penguin: --mount %q must be URI_PATH=FS_PATH", spec)
	}
	return spec[:idx], spec[idx+1:], nil
}

func addrToURL(addr string) string {
	return "http://" + addr + "/"
}
