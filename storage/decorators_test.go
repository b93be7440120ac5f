package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/amirrezaask/cachestore/storage"
)

var errUnavailable = errors.New("unavailable")

// brokenReads fails every GetItem.
type brokenReads struct {
	*storage.Memory
}

func (brokenReads) GetItem(context.Context, string) (string, bool, error) {
	return "", false, errUnavailable
}

func TestWithMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	healthy, err := storage.WithMetrics(storage.NewMemory(), "memory", "cachestore", reg)
	require.NoError(t, err)
	broken, err := storage.WithMetrics(brokenReads{storage.NewMemory()}, "broken", "cachestore", reg)
	require.NoError(t, err, "second backend must reuse the registered collectors")

	require.NoError(t, healthy.SetItem(ctx, "k", "v"))
	v, ok, err := healthy.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	_, err = healthy.GetAllKeys(ctx)
	require.NoError(t, err)
	require.NoError(t, healthy.MultiRemove(ctx, []string{"k"}))

	_, _, err = broken.GetItem(ctx, "k")
	assert.ErrorIs(t, err, errUnavailable)
	_, _, err = broken.GetItem(ctx, "k")
	assert.ErrorIs(t, err, errUnavailable)

	expected := `
# HELP cachestore_backend_op_errors_total Failed storage backend operations by [backend] [op]
# TYPE cachestore_backend_op_errors_total counter
cachestore_backend_op_errors_total{backend="broken",op="get_item"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "cachestore_backend_op_errors_total"))

	// one histogram series per (backend, op) pair that ran.
	n, err := testutil.GatherAndCount(reg, "cachestore_backend_op_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestWithTracing(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer provider.Shutdown(ctx)

	b := storage.WithTracing(storage.NewMemory(), "memory", provider.Tracer("test"))
	require.NoError(t, b.SetItem(ctx, "k", "value"))
	_, ok, err := b.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, b.MultiRemove(ctx, []string{"k"}))

	broken := storage.WithTracing(brokenReads{storage.NewMemory()}, "broken", provider.Tracer("test"))
	_, _, err = broken.GetItem(ctx, "k")
	assert.ErrorIs(t, err, errUnavailable)

	spans := recorder.Ended()
	require.Len(t, spans, 4)

	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"memory.SetItem", "memory.GetItem", "memory.MultiRemove", "broken.GetItem"}, names)

	assert.Contains(t, spans[0].Attributes(), attribute.Int("cache.value_size", 5))
	assert.Contains(t, spans[1].Attributes(), attribute.Bool("cache.hit", true))
	assert.Contains(t, spans[2].Attributes(), attribute.StringSlice("cache.keys", []string{"k"}))
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
	assert.Equal(t, codes.Error, spans[3].Status().Code)
	assert.Len(t, spans[3].Events(), 1)
}
