// Package dev provides the route manifest dev server.
//
// This package implements:
//   - Polling of the routes folder and hook script for changes
//   - Rebuilding the manifest on every change
//   - Serving the manifest over HTTP
//   - Pushing updates to clients over WebSocket
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{
//	    Addr:       cfg.DevAddress(),
//	    Source:     discovery.Dir{Root: cfg.RoutesPath()},
//	    WatchPaths: dev.CollectWatchPaths(cfg),
//	})
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Run(ctx); err != nil {
//	    return err
//	}
//
// # Update Protocol
//
// Clients connect to /_fsroutes/ws via WebSocket and receive the latest
// message on connect, then one message per rebuild:
//
//	{"type": "routes", "routes": [...]}     // New manifest
//	{"type": "error", "error": {...}}       // Rebuild failed; see errors.FormatJSON
package dev
