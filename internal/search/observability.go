package search

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/UkralStul/content-service/internal/search"

// Metrics - инструменты метрик поиска.
type Metrics struct {
	SearchCount    metric.Int64Counter
	SearchDuration metric.Float64Histogram
	SearchErrors   metric.Int64Counter
}

// Option настраивает Engine.
type Option func(*Engine)

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithDefaultTracer использует глобальный трейсер OpenTelemetry.
func WithDefaultTracer() Option {
	return func(e *Engine) { e.tracer = otel.Tracer(instrumentationName) }
}

func WithMeter(meter metric.Meter) Option {
	return func(e *Engine) { e.metrics = initMetrics(meter) }
}

// WithDefaultMeter использует глобальный meter OpenTelemetry.
func WithDefaultMeter() Option {
	return func(e *Engine) { e.metrics = initMetrics(otel.Meter(instrumentationName)) }
}

func initMetrics(meter metric.Meter) *Metrics {
	count, _ := meter.Int64Counter("posts.search.count",
		metric.WithDescription("Total number of post searches"),
		metric.WithUnit("{search}"),
	)
	duration, _ := meter.Float64Histogram("posts.search.duration",
		metric.WithDescription("Post search duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500),
	)
	errs, _ := meter.Int64Counter("posts.search.errors",
		metric.WithDescription("Total number of failed post searches"),
		metric.WithUnit("{error}"),
	)
	return &Metrics{SearchCount: count, SearchDuration: duration, SearchErrors: errs}
}

// spanWrapper позволяет работать без трейсера.
type spanWrapper struct {
	span trace.Span
}

func (w spanWrapper) End() {
	if w.span != nil {
		w.span.End()
	}
}

func (w spanWrapper) fail(err error) {
	if w.span != nil {
		w.span.RecordError(err)
		w.span.SetStatus(codes.Error, err.Error())
	}
}

func (w spanWrapper) SetAttributes(kv ...attribute.KeyValue) {
	if w.span != nil {
		w.span.SetAttributes(kv...)
	}
}

func (e *Engine) startSpan(ctx context.Context, name string) (context.Context, spanWrapper) {
	if e.tracer == nil {
		return ctx, spanWrapper{}
	}
	ctx, span := e.tracer.Start(ctx, name)
	return ctx, spanWrapper{span}
}

func (e *Engine) record(ctx context.Context, sortType string, d time.Duration, err error) {
	if e.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("sort.type", sortType))
	e.metrics.SearchCount.Add(ctx, 1, attrs)
	e.metrics.SearchDuration.Record(ctx, float64(d.Milliseconds()), attrs)
	if err != nil {
		e.metrics.SearchErrors.Add(ctx, 1, attrs)
	}
}
