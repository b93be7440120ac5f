package storage

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type traced struct {
	Backend
	name   string
	tracer trace.Tracer
}

// WithTracing opens one span per backend operation, named "<name>.<op>".
func WithTracing(b Backend, name string, tracer trace.Tracer) Backend {
	return &traced{Backend: b, name: name, tracer: tracer}
}

func (t *traced) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, t.name+"."+op, trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *traced) GetItem(ctx context.Context, key string) (string, bool, error) {
	ctx, span := t.start(ctx, "GetItem", attribute.String("cache.key", key))
	v, ok, err := t.Backend.GetItem(ctx, key)
	span.SetAttributes(attribute.Bool("cache.hit", ok))
	end(span, err)
	return v, ok, err
}

func (t *traced) SetItem(ctx context.Context, key string, value string) error {
	ctx, span := t.start(ctx, "SetItem", attribute.String("cache.key", key), attribute.Int("cache.value_size", len(value)))
	err := t.Backend.SetItem(ctx, key, value)
	end(span, err)
	return err
}

func (t *traced) RemoveItem(ctx context.Context, key string) error {
	ctx, span := t.start(ctx, "RemoveItem", attribute.String("cache.key", key))
	err := t.Backend.RemoveItem(ctx, key)
	end(span, err)
	return err
}

func (t *traced) MultiRemove(ctx context.Context, keys []string) error {
	ctx, span := t.start(ctx, "MultiRemove", attribute.StringSlice("cache.keys", keys))
	err := t.Backend.MultiRemove(ctx, keys)
	end(span, err)
	return err
}

func (t *traced) GetAllKeys(ctx context.Context) ([]string, error) {
	ctx, span := t.start(ctx, "GetAllKeys")
	keys, err := t.Backend.GetAllKeys(ctx)
	span.SetAttributes(attribute.Int("cache.key_count", len(keys)))
	end(span, err)
	return keys, err
}
