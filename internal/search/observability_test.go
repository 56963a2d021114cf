package search

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
	"github.com/UkralStul/content-service/internal/storage/inmemory"
)

type telemetry struct {
	reader *sdkmetric.ManualReader
	spans  *tracetest.SpanRecorder
}

func newTelemetry(t *testing.T) (*telemetry, []Option) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})
	return &telemetry{reader: reader, spans: spans}, []Option{
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
	}
}

// sum возвращает сумму точек счетчика; false, если метрика не записана.
func (tm *telemetry) sum(t *testing.T, name string) (int64, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, tm.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			var total int64
			for _, dp := range data.DataPoints {
				total += dp.Value
			}
			return total, true
		}
	}
	return 0, false
}

func (tm *telemetry) ended(name string) []sdktrace.ReadOnlySpan {
	var out []sdktrace.ReadOnlySpan
	for _, s := range tm.spans.Ended() {
		if s.Name() == name {
			out = append(out, s)
		}
	}
	return out
}

func TestEngine_RecordsSearchTelemetry(t *testing.T) {
	tm, opts := newTelemetry(t)
	repos := inmemory.New().Repositories()
	_, err := repos.Links.Save(context.Background(), &domain.LinkPost{
		PostCore:   domain.PostCore{PostType: domain.PostTypeLink, AuthorID: "u1", Tags: []string{}},
		LinkDetail: domain.LinkDetail{URL: "https://example.com"},
	})
	require.NoError(t, err)
	engine := NewEngine(repos, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)

	for i := 0; i < 2; i++ {
		page, err := engine.SearchPosts(context.Background(), domain.SearchFilter{}.Normalize(testLimit))
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalItems)
	}

	count, ok := tm.sum(t, "posts.search.count")
	require.True(t, ok)
	assert.Equal(t, int64(2), count)
	errs, _ := tm.sum(t, "posts.search.errors")
	assert.Zero(t, errs)

	spans := tm.ended("search.SearchPosts")
	require.Len(t, spans, 2)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestEngine_RecordsUnknownPostTypeAsError(t *testing.T) {
	tm, opts := newTelemetry(t)
	repos := inmemory.New().Repositories()
	repos.Search = staticSearch{rows: []*storage.PostRow{{PostCore: domain.PostCore{ID: "x", PostType: "AUDIO"}}}}
	engine := NewEngine(repos, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)

	_, err := engine.SearchPosts(context.Background(), domain.SearchFilter{}.Normalize(testLimit))
	require.ErrorIs(t, err, domain.ErrInternal)

	count, ok := tm.sum(t, "posts.search.count")
	require.True(t, ok)
	assert.Equal(t, int64(1), count)
	errs, ok := tm.sum(t, "posts.search.errors")
	require.True(t, ok)
	assert.Equal(t, int64(1), errs)

	spans := tm.ended("search.SearchPosts")
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.NotEmpty(t, spans[0].Events(), "error is recorded on the span")
}
