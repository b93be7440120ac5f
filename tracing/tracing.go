package tracing

import (
	"context"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName = "github.com/amirrezaask/cachestore"

	batchTimeout = time.Second
)

type Config struct {
	// Output receives pretty printed spans; defaults to os.Stdout.
	Output io.Writer
}

// Init installs a global tracer provider exporting to c.Output and returns the
// function that flushes and stops it.
func Init(c Config) (shutdown func(ctx context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error
	otel.SetTextMapPropagator(newPropagator())

	tracerProvider, err := newTraceProvider(c)
	if err != nil {
		return nil, err
	}
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	return func(ctx context.Context) error {
		for _, f := range shutdownFuncs {
			if err := f(ctx); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// Tracer returns the cachestore tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

func newTraceProvider(c Config) (*sdktrace.TracerProvider, error) {
	out := c.Output
	if out == nil {
		out = os.Stdout
	}
	traceExporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter, sdktrace.WithBatchTimeout(batchTimeout)),
	), nil
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}
