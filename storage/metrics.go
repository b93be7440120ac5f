package storage

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{
	0.0005,
	0.001, // 1ms
	0.002,
	0.005,
	0.01, // 10ms
	0.02,
	0.05,
	0.1, // 100 ms
	0.2,
	0.5,
	1.0, // 1s
	2.0,
	5.0,
	10.0, // 10s
}

type metrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

type instrumented struct {
	Backend
	name    string
	metrics *metrics
}

// WithMetrics times every operation of b and counts its failures, labelled by
// name and operation. Collectors are registered on reg; a collector already
// registered under the same namespace is reused so several backends can share it.
func WithMetrics(b Backend, name string, namespace string, reg prometheus.Registerer) (Backend, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_op_duration_seconds",
		Help:      "Storage backend operation durations by [backend] [op]",
		Buckets:   durationBuckets,
	}, []string{"backend", "op"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_op_errors_total",
		Help:      "Failed storage backend operations by [backend] [op]",
	}, []string{"backend", "op"})

	if err := reg.Register(duration); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		duration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	if err := reg.Register(errs); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		errs = are.ExistingCollector.(*prometheus.CounterVec)
	}

	return &instrumented{
		Backend: b,
		name:    name,
		metrics: &metrics{duration: duration, errors: errs},
	}, nil
}

func (i *instrumented) observe(op string, f func() error) error {
	timer := prometheus.NewTimer(i.metrics.duration.WithLabelValues(i.name, op))
	err := f()
	timer.ObserveDuration()
	if err != nil {
		i.metrics.errors.WithLabelValues(i.name, op).Inc()
	}
	return err
}

func (i *instrumented) GetItem(ctx context.Context, key string) (v string, ok bool, err error) {
	err = i.observe("get_item", func() error {
		v, ok, err = i.Backend.GetItem(ctx, key)
		return err
	})
	return v, ok, err
}

func (i *instrumented) SetItem(ctx context.Context, key string, value string) error {
	return i.observe("set_item", func() error {
		return i.Backend.SetItem(ctx, key, value)
	})
}

func (i *instrumented) RemoveItem(ctx context.Context, key string) error {
	return i.observe("remove_item", func() error {
		return i.Backend.RemoveItem(ctx, key)
	})
}

func (i *instrumented) MultiRemove(ctx context.Context, keys []string) error {
	return i.observe("multi_remove", func() error {
		return i.Backend.MultiRemove(ctx, keys)
	})
}

func (i *instrumented) GetAllKeys(ctx context.Context) (keys []string, err error) {
	err = i.observe("get_all_keys", func() error {
		keys, err = i.Backend.GetAllKeys(ctx)
		return err
	})
	return keys, err
}
