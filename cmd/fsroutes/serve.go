package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/internal/dev"
	"github.com/vango-dev/fsroutes/pkg/instrument"
	"github.com/vango-dev/fsroutes/pkg/middleware"
	"github.com/vango-dev/fsroutes/pkg/router"
)

func serveCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the route manifest dev server",
		Long: `Serve the route manifest and rebuild it whenever route files or the
hook script change.

Endpoints:
  GET /routes          The manifest
  GET /routes/{name}   One route by name
  GET /_fsroutes/ws    WebSocket updates
  GET /metrics         Prometheus metrics
  GET /healthz         Liveness

Examples:
  fsroutes serve
  fsroutes serve --port=8080
  fsroutes serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from fsroutes.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from fsroutes.json)")

	return cmd
}

func runServe(port int, host string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := loadProject()
	if err != nil {
		return err
	}
	defer p.closeHooks()

	// Apply command-line overrides
	if port > 0 {
		p.cfg.Dev.Port = port
	}
	if host != "" {
		p.cfg.Dev.Host = host
	}

	interval, err := p.cfg.Interval()
	if err != nil {
		return err
	}

	metrics := instrument.New()
	reload := func() (router.Options, error) {
		opts, err := p.routerOptions()
		if err != nil {
			return router.Options{}, err
		}
		opts.Observer = metrics
		return opts, nil
	}

	server := dev.NewServer(dev.ServerOptions{
		Addr:       p.cfg.DevAddress(),
		Source:     p.source,
		Reload:     reload,
		Encode:     p.encodeOptions(),
		WatchPaths: dev.CollectWatchPaths(p.cfg),
		Interval:   interval,
		Middleware: []func(http.Handler) http.Handler{
			middleware.OpenTelemetry(),
			middleware.Prometheus(),
		},
		Logger: slog.Default(),
		OnRebuild: func(routes []*router.Route, err error) {
			if err != nil {
				errorMsg("Rebuild failed: %v", err)
				return
			}
			success("Built %d routes", router.Count(routes))
		},
	})

	fmt.Println()
	info("Serving routes at %s/routes", p.cfg.DevURL())
	fmt.Println()

	if err := server.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "\n  Shutting down...")
	return nil
}
