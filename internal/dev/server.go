package dev

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/fsroutes/internal/errors"
	"github.com/vango-dev/fsroutes/pkg/discovery"
	"github.com/vango-dev/fsroutes/pkg/manifest"
	"github.com/vango-dev/fsroutes/pkg/router"
)

// ServerOptions configures the manifest server.
type ServerOptions struct {
	// Addr is the listen address (e.g., "localhost:3100").
	Addr string

	// Source discovers route files on every rebuild.
	Source discovery.Source

	// Router configures route generation.
	Router router.Options

	// Reload, if set, is called before every rebuild and replaces Router.
	// Use it to pick up edited hook scripts.
	Reload func() (router.Options, error)

	// Encode configures the served manifest.
	Encode manifest.EncodeOptions

	// WatchPaths are polled for changes. Empty disables watching.
	WatchPaths []string

	// Interval is the watcher poll interval.
	Interval time.Duration

	// Gatherer backs /metrics. Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Middleware wraps every request, after panic recovery.
	Middleware []func(http.Handler) http.Handler

	// Logger receives server logs. Default: slog.Default()
	Logger *slog.Logger

	// OnRebuild is called after every rebuild with its result.
	OnRebuild func(routes []*router.Route, err error)
}

// Server serves the route manifest and pushes updates to WebSocket clients
// whenever the watched files change.
type Server struct {
	opts      ServerOptions
	generator *router.Generator
	hub       *Hub
	logger    *slog.Logger

	rebuildMu sync.Mutex

	mu       sync.RWMutex
	manifest []byte
	lastErr  *errors.Error
}

// NewServer creates a new manifest server.
func NewServer(opts ServerOptions) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		opts:   opts,
		hub:    NewHub(),
		logger: opts.Logger,
	}
	s.generator = s.newGenerator(opts.Router)
	return s
}

func (s *Server) newGenerator(opts router.Options) *router.Generator {
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	return router.New(opts)
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Manifest returns the last successfully built manifest, or nil.
func (s *Server) Manifest() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest
}

// Rebuild discovers route files, generates routes and publishes the new
// manifest. On failure the previous manifest keeps being served and clients
// receive an error message.
func (s *Server) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	routes, data, err := s.build(ctx)
	if s.opts.OnRebuild != nil {
		s.opts.OnRebuild(routes, err)
	}

	if err != nil {
		fe := errors.FromError(err, "E202")
		s.mu.Lock()
		s.lastErr = fe
		s.mu.Unlock()

		s.logger.Error("rebuild failed", "error", err)
		s.hub.NotifyError([]byte(fe.FormatJSON()))
		return fe
	}

	s.mu.Lock()
	s.manifest = data
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Info("routes rebuilt",
		"routes", router.Count(routes),
		"duration", time.Since(start).Round(time.Millisecond))
	s.hub.NotifyRoutes(data)
	return nil
}

func (s *Server) build(ctx context.Context) ([]*router.Route, []byte, error) {
	if s.opts.Reload != nil {
		opts, err := s.opts.Reload()
		if err != nil {
			return nil, nil, errors.FromError(err, "E301")
		}
		s.generator = s.newGenerator(opts)
	}

	modules, err := s.opts.Source.Discover(ctx)
	if err != nil {
		return nil, nil, errors.New("E202").Wrap(err)
	}

	routes, err := s.generator.GenerateContext(ctx, modules)
	if err != nil {
		return nil, nil, errors.New("E302").Wrap(err).WithLocationFromError(err)
	}

	opts := s.opts.Encode
	opts.Compact = true
	data, err := manifest.Encode(routes, opts)
	if err != nil {
		return routes, nil, errors.New("E402").Wrap(err)
	}
	return routes, data, nil
}

// Handler returns the HTTP handler:
//
//	GET /routes           manifest JSON
//	GET /routes/{name}    the first route with that name
//	GET /_fsroutes/ws     WebSocket updates
//	GET /metrics          Prometheus metrics
//	GET /healthz          liveness
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.opts.Middleware...)

	r.Get("/routes", s.handleRoutes)
	r.Get("/routes/{name}", s.handleRoute)
	r.Get("/_fsroutes/ws", s.hub.ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	return r
}

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	data, lastErr := s.manifest, s.lastErr
	s.mu.RUnlock()

	if data == nil {
		s.writeUnavailable(w, lastErr)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	data, lastErr := s.manifest, s.lastErr
	s.mu.RUnlock()

	if data == nil {
		s.writeUnavailable(w, lastErr)
		return
	}

	name := chi.URLParam(r, "name")
	record, ok := manifest.FindByName(data, name)
	if !ok {
		http.Error(w, "route "+name+" not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, []byte(record))
}

func (s *Server) writeUnavailable(w http.ResponseWriter, lastErr *errors.Error) {
	if lastErr == nil {
		http.Error(w, "routes not built yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, []byte(lastErr.FormatJSON()))
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// Run builds the manifest, serves it on Addr and rebuilds on every change
// the watcher reports until ctx is done. A failed initial build is reported
// to clients and does not stop the server.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.New("E501").Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.Rebuild(ctx)

	if len(s.opts.WatchPaths) > 0 {
		changeCh := make(chan []Change, 1)
		watcher := NewWatcher(WatcherConfig{
			Paths:    s.opts.WatchPaths,
			Interval: s.opts.Interval,
		})
		watcher.OnChange(func(changes []Change) {
			select {
			case changeCh <- changes:
			default:
			}
		})
		go watcher.Start(ctx)
		go s.processChanges(ctx, changeCh)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	s.logger.Info("serving routes", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.hub.Close()
			return errors.New("E501").Wrap(err)
		}
	}

	s.hub.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	return nil
}

// processChanges rebuilds once per batch of changes.
func (s *Server) processChanges(ctx context.Context, changeCh <-chan []Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case changes := <-changeCh:
			for _, c := range changes {
				s.logger.Debug("file changed", "path", c.Path, "op", c.Op.String())
			}
			s.Rebuild(ctx)
		}
	}
}
