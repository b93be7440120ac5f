package main

import (
	"context"
	"io"

	"github.com/amirrezaask/cachestore/env"
	"github.com/amirrezaask/cachestore/errors"
	"github.com/amirrezaask/cachestore/lock"
	"github.com/amirrezaask/cachestore/storage"
)

type backend struct {
	storage.Backend
	io.Closer
	// nil unless the backend can be shared by several sweepers.
	lock *lock.Redis
}

func noClose() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openBackend connects to the backend named by kind, reading its own
// configuration from the environment.
func openBackend(ctx context.Context, kind string, boltPath string) (*backend, error) {
	switch kind {
	case "redis":
		var c storage.RedisConfig
		if err := env.Load(&c); err != nil {
			return nil, err
		}
		r, err := storage.NewRedis(ctx, c)
		if err != nil {
			return nil, err
		}
		return &backend{Backend: r, Closer: r.Client, lock: lock.NewRedis(r.Client)}, nil

	case "sql":
		var c storage.SQLConfig
		if err := env.Load(&c); err != nil {
			return nil, err
		}
		s, err := storage.OpenSQL(ctx, c)
		if err != nil {
			return nil, err
		}
		return &backend{Backend: s, Closer: s}, nil

	case "bolt":
		b, err := storage.OpenBolt(boltPath, storage.BoltOptions{})
		if err != nil {
			return nil, err
		}
		return &backend{Backend: b, Closer: b}, nil

	case "minio":
		var c storage.MinioConfig
		if err := env.Load(&c); err != nil {
			return nil, err
		}
		m, err := storage.NewMinio(ctx, c)
		if err != nil {
			return nil, err
		}
		return &backend{Backend: m, Closer: m}, nil

	case "memory":
		return &backend{Backend: storage.NewMemory(), Closer: closerFunc(noClose)}, nil

	default:
		return nil, errors.Newf("unknown backend '%s'", kind)
	}
}
