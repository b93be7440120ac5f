package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/matryer/is"

	"github.com/amirrezaask/cachestore/cache"
)

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("bolt", func(t *testing.T) {
		is := is.New(t)
		b, err := openBackend(ctx, "bolt", filepath.Join(t.TempDir(), "sweeper.db"))
		is.NoErr(err)
		defer b.Close()
		is.True(b.lock == nil)
		is.NoErr(b.SetItem(ctx, "k", "v"))
	})

	t.Run("sql", func(t *testing.T) {
		is := is.New(t)
		t.Setenv("SQL_DRIVER", "sqlite3")
		t.Setenv("SQL_DSN", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
		b, err := openBackend(ctx, "sql", "")
		is.NoErr(err)
		defer b.Close()
		is.NoErr(b.SetItem(ctx, "k", "v"))
	})

	t.Run("unknown", func(t *testing.T) {
		is := is.New(t)
		_, err := openBackend(ctx, "etcd", "")
		is.True(err != nil)
	})
}

func TestRunRejectsZeroSweepInterval(t *testing.T) {
	is := is.New(t)
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("SWEEP_INTERVAL", "0s")
	t.Setenv("LOG_LEVEL", "error")

	err := run(context.Background())
	is.True(errors.Is(err, cache.ErrInvalidConfig))
}
