package dev

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/pkg/discovery"
	"github.com/vango-dev/fsroutes/pkg/instrument"
	"github.com/vango-dev/fsroutes/pkg/middleware"
	"github.com/vango-dev/fsroutes/pkg/router"
)

func TestDiff(t *testing.T) {
	t0 := time.Unix(100, 0)
	t1 := time.Unix(200, 0)

	previous := map[string]time.Time{
		"a/page.tsx": t0,
		"b/page.tsx": t0,
		"c/page.tsx": t0,
	}
	current := map[string]time.Time{
		"a/page.tsx": t0,
		"b/page.tsx": t1,
		"d/page.tsx": t1,
	}

	got := diff(previous, current)
	want := []Change{
		{Path: "b/page.tsx", Op: OpModify},
		{Path: "c/page.tsx", Op: OpRemove},
		{Path: "d/page.tsx", Op: OpCreate},
	}
	if len(got) != len(want) {
		t.Fatalf("diff = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("diff[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if changes := diff(current, current); len(changes) != 0 {
		t.Errorf("diff of identical scans = %v", changes)
	}
}

func TestOpString(t *testing.T) {
	for op, want := range map[Op]string{OpCreate: "create", OpModify: "modify", OpRemove: "remove", Op(9): "unknown"} {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", op, got, want)
		}
	}
}

func TestWatcher_ShouldIgnore(t *testing.T) {
	w := NewWatcher(WatcherConfig{
		Ignore: append([]string{"src/views/_drafts", "*.bak", "/tmp/x/*.log"}, DefaultIgnore...),
	})

	tests := []struct {
		path string
		want bool
	}{
		{"/p/src/views/page.tsx", false},
		{"/p/node_modules/x/page.tsx", true},
		{"/p/.git", true},
		{"/p/src/views/page.tsx.swp", true},
		{"/p/src/views/page.tsx~", true},
		{"/p/src/views/_drafts/page.tsx", true},
		{"/p/src/views/drafts/page.tsx", false},
		{"/p/src/views/old.bak", true},
		{"/tmp/x/run.log", true},
		{"/tmp/y/run.log", false},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_Scan(t *testing.T) {
	tmpDir := t.TempDir()
	mustWrite(t, filepath.Join(tmpDir, "page.tsx"), "a")
	mustWrite(t, filepath.Join(tmpDir, "news", "page.tsx"), "b")
	mustWrite(t, filepath.Join(tmpDir, "node_modules", "x", "page.tsx"), "c")
	hooks := filepath.Join(t.TempDir(), "routes.lua")
	mustWrite(t, hooks, "-- hooks")

	w := NewWatcher(WatcherConfig{Paths: []string{tmpDir, hooks, filepath.Join(tmpDir, "missing")}})
	stamps := w.scan()

	if len(stamps) != 3 {
		t.Errorf("scan found %d files, want 3: %v", len(stamps), stamps)
	}
	if _, ok := stamps[hooks]; !ok {
		t.Error("scan should include watched files, not only directories")
	}
}

func TestWatcher_ReportsBatches(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "page.tsx")
	mustWrite(t, existing, "a")

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Interval: 20 * time.Millisecond,
	})

	batches := make(chan []Change, 10)
	watcher.OnChange(func(c []Change) {
		batches <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watcher.Start(ctx)
	waitFor(t, watcher.IsRunning)
	time.Sleep(50 * time.Millisecond)

	created := filepath.Join(tmpDir, "news", "page.tsx")
	mustWrite(t, created, "b")

	select {
	case batch := <-batches:
		if len(batch) != 1 || batch[0].Path != created || batch[0].Op != OpCreate {
			t.Errorf("batch = %v", batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for change")
	}

	if err := os.Remove(existing); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-batches:
		if len(batch) != 1 || batch[0].Op != OpRemove {
			t.Errorf("batch = %v", batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for removal")
	}

	watcher.Stop()
	if watcher.IsRunning() {
		t.Error("IsRunning() after Stop should be false")
	}
}

func TestCollectWatchPaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.New()
	if err := cfg.SaveTo(filepath.Join(tmpDir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	cfg.Hooks.Lua = "routes.lua"

	got := CollectWatchPaths(cfg)
	want := []string{filepath.Join(tmpDir, "src", "views"), filepath.Join(tmpDir, "routes.lua")}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("CollectWatchPaths() = %v, want %v", got, want)
	}

	cfg.Source.Kind = config.SourceS3
	cfg.Hooks.Lua = ""
	if got := CollectWatchPaths(cfg); len(got) != 0 {
		t.Errorf("S3 source without hooks should watch nothing, got %v", got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func staticSource() discovery.Static {
	return discovery.Static{
		"/src/views/page.tsx":           "/src/views/page.tsx",
		"/src/views/news/page.tsx":      "/src/views/news/page.tsx",
		"/src/views/news/[id]/page.tsx": "/src/views/news/[id]/page.tsx",
	}
}

type failingSource struct{}

func (failingSource) Discover(context.Context) ([]router.Module, error) {
	return nil, errors.New("disk on fire")
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, rec.Body.String()
}

func TestServer_Routes(t *testing.T) {
	srv := NewServer(ServerOptions{Source: staticSource(), Gatherer: prometheus.NewRegistry()})
	h := srv.Handler()

	if code, _ := get(t, h, "/routes"); code != http.StatusServiceUnavailable {
		t.Errorf("GET /routes before build = %d, want 503", code)
	}

	if err := srv.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	code, body := get(t, h, "/routes")
	if code != http.StatusOK {
		t.Fatalf("GET /routes = %d", code)
	}
	var recs []map[string]any
	if err := json.Unmarshal([]byte(body), &recs); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}
	if len(recs) != 1 || recs[0]["path"] != "/" {
		t.Errorf("manifest = %s", body)
	}

	code, body = get(t, h, "/routes/newsId")
	if code != http.StatusOK || !strings.Contains(body, `"path":"/news/:id"`) {
		t.Errorf("GET /routes/newsId = %d %s", code, body)
	}

	if code, _ := get(t, h, "/routes/missing"); code != http.StatusNotFound {
		t.Errorf("GET /routes/missing = %d, want 404", code)
	}

	if code, body := get(t, h, "/healthz"); code != http.StatusOK || body != "ok" {
		t.Errorf("GET /healthz = %d %q", code, body)
	}
}

func TestServer_RebuildError(t *testing.T) {
	srv := NewServer(ServerOptions{Source: failingSource{}, Gatherer: prometheus.NewRegistry()})

	err := srv.Rebuild(context.Background())
	if err == nil || !strings.Contains(err.Error(), "E202") {
		t.Fatalf("Rebuild() error = %v, want E202", err)
	}

	code, body := get(t, srv.Handler(), "/routes")
	if code != http.StatusServiceUnavailable {
		t.Errorf("GET /routes = %d, want 503", code)
	}
	if !strings.Contains(body, `"code":"E202"`) || !strings.Contains(body, "disk on fire") {
		t.Errorf("body = %s", body)
	}
}

func TestServer_HookErrorKeepsManifest(t *testing.T) {
	var fail atomic.Bool
	srv := NewServer(ServerOptions{
		Source:   staticSource(),
		Gatherer: prometheus.NewRegistry(),
		Router: router.Options{
			TransformRoute: func(r *router.Route, _ router.TransformContext) ([]*router.Route, error) {
				if fail.Load() {
					return nil, errors.New("hook exploded")
				}
				return []*router.Route{r}, nil
			},
		},
	})

	if err := srv.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := srv.Manifest()

	fail.Store(true)
	err := srv.Rebuild(context.Background())
	if err == nil || !strings.Contains(err.Error(), "E302") {
		t.Fatalf("Rebuild() error = %v, want E302", err)
	}
	if string(srv.Manifest()) != string(before) {
		t.Error("a failed rebuild should keep the previous manifest")
	}
	if code, _ := get(t, srv.Handler(), "/routes"); code != http.StatusOK {
		t.Errorf("GET /routes = %d, want 200", code)
	}
}

func TestServer_Reload(t *testing.T) {
	var calls int
	srv := NewServer(ServerOptions{
		Source:   staticSource(),
		Gatherer: prometheus.NewRegistry(),
		Reload: func() (router.Options, error) {
			calls++
			return router.Options{
				ResolveRouteName: func(ctx router.NameContext) (string, error) {
					return "v" + string(rune('0'+calls)), nil
				},
			}, nil
		},
	})

	for i := 0; i < 2; i++ {
		if err := srv.Rebuild(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Errorf("Reload called %d times, want 2", calls)
	}
	if !strings.Contains(string(srv.Manifest()), `"name":"v2"`) {
		t.Errorf("manifest should use the reloaded options: %s", srv.Manifest())
	}
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := NewServer(ServerOptions{
		Source:   staticSource(),
		Gatherer: reg,
		Router:   router.Options{Observer: instrument.New(instrument.WithRegistry(reg))},
		Middleware: []func(http.Handler) http.Handler{
			middleware.Prometheus(middleware.WithRegistry(reg)),
		},
	})
	if err := srv.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	code, body := get(t, srv.Handler(), "/metrics")
	if code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", code)
	}
	if !strings.Contains(body, `fsroutes_generations_total{result="success"} 1`) {
		t.Errorf("metrics missing generation counter:\n%s", body)
	}
	if !strings.Contains(body, "fsroutes_routes 3") {
		t.Errorf("metrics missing routes gauge:\n%s", body)
	}

	get(t, srv.Handler(), "/routes/news")
	_, body = get(t, srv.Handler(), "/metrics")
	if !strings.Contains(body, `fsroutes_http_requests_total{code="200",method="GET",route="/routes/{name}"} 1`) {
		t.Errorf("metrics missing request counter:\n%s", body)
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/_fsroutes/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid message %s: %v", data, err)
	}
	return msg
}

func TestHub_LatestOnConnectAndBroadcast(t *testing.T) {
	srv := NewServer(ServerOptions{Source: staticSource(), Gatherer: prometheus.NewRegistry()})
	if err := srv.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts.URL)
	msg := readMessage(t, conn)
	if msg.Type != MessageRoutes || !strings.Contains(string(msg.Routes), `"/news/:id"`) {
		t.Errorf("first message = %+v", msg)
	}

	waitFor(t, func() bool { return srv.Hub().ClientCount() == 1 })

	srv.Hub().NotifyError([]byte(`{"code":"E302"}`))
	msg = readMessage(t, conn)
	if msg.Type != MessageError || string(msg.Error) != `{"code":"E302"}` {
		t.Errorf("error message = %+v", msg)
	}

	srv.Hub().Close()
	waitFor(t, func() bool { return srv.Hub().ClientCount() == 0 })
}

func TestServer_ServeRebuildsOnChange(t *testing.T) {
	tmpDir := t.TempDir()
	mustWrite(t, filepath.Join(tmpDir, "page.tsx"), "root")

	srv := NewServer(ServerOptions{
		Source:     discovery.Dir{Root: tmpDir},
		WatchPaths: []string{tmpDir},
		Interval:   20 * time.Millisecond,
		Gatherer:   prometheus.NewRegistry(),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	waitFor(t, func() bool { return srv.Manifest() != nil })
	time.Sleep(150 * time.Millisecond)

	mustWrite(t, filepath.Join(tmpDir, "about", "page.tsx"), "about")
	waitFor(t, func() bool { return strings.Contains(string(srv.Manifest()), `"/about"`) })

	resp, err := http.Get(base + "/routes/about")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"component":"/src/views/about/page.tsx"`) {
		t.Errorf("GET /routes/about = %d %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
