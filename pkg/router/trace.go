package router

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for route generation spans.
const defaultTracerName = "github.com/vango-dev/fsroutes"

// GenerateContext is GenerateModules wrapped in a "fsroutes.generate" span.
// Generation itself does not block; ctx only carries the trace.
func (g *Generator) GenerateContext(ctx context.Context, modules []Module) ([]*Route, error) {
	tracer := g.opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(defaultTracerName)
	}

	_, span := tracer.Start(ctx, "fsroutes.generate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("fsroutes.modules.discovered", len(modules)),
			attribute.String("fsroutes.index_file", g.opts.IndexFileName),
		),
	)
	defer span.End()

	start := time.Now()
	routes, stats, err := g.generate(modules)
	if g.opts.Observer != nil {
		g.opts.Observer.ObserveGenerate(stats, time.Since(start), err)
	}

	span.SetAttributes(
		attribute.Int("fsroutes.modules.routed", stats.Modules),
		attribute.Int("fsroutes.modules.ignored", stats.Ignored),
		attribute.Int("fsroutes.routes", stats.Routes),
		attribute.Int("fsroutes.routes.spilled", stats.Spilled),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return routes, nil
}
