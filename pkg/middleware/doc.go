// Package middleware provides observability middleware for the fsroutes
// HTTP server.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware
//
// Both are plain func(http.Handler) http.Handler and work with any router.
// Under chi they label requests with the matched route pattern
// (e.g. "/routes/{name}") instead of the raw path.
//
// # OpenTelemetry Middleware
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given.
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - fsroutes_http_requests_total: Requests by route, method and status code
//   - fsroutes_http_request_duration_seconds: Request duration histogram
//   - fsroutes_http_requests_in_flight: Requests being served
//
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
package middleware
