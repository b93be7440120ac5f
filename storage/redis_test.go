package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amirrezaask/cachestore/storage"
	"github.com/amirrezaask/cachestore/test"
)

func TestRedisGetItem(t *testing.T) {
	var r *storage.Redis
	mock := test.Redis(&r)
	ctx := context.Background()

	mock.ExpectRecord("cachestore-a", `"v"`)
	mock.ExpectMissing("cachestore-b")
	mock.ExpectGet("cachestore-c").SetErr(errors.New("connection reset"))

	v, ok, err := r.GetItem(ctx, "cachestore-a")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"v"`, v)

	_, ok, err = r.GetItem(ctx, "cachestore-b")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = r.GetItem(ctx, "cachestore-c")
	assert.ErrorContains(t, err, "connection reset")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWrites(t *testing.T) {
	var r *storage.Redis
	mock := test.Redis(&r)
	ctx := context.Background()

	mock.ExpectStore("cacheexpiration-a", "101")
	mock.ExpectRemove("cachestore-a")
	mock.ExpectRemove("cacheexpiration-a", "cachestore-a")

	assert.NoError(t, r.SetItem(ctx, "cacheexpiration-a", "101"))
	assert.NoError(t, r.RemoveItem(ctx, "cachestore-a"))
	assert.NoError(t, r.MultiRemove(ctx, []string{"cacheexpiration-a", "cachestore-a"}))
	// an empty batch never reaches the server.
	assert.NoError(t, r.MultiRemove(ctx, nil))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisGetAllKeys(t *testing.T) {
	var r *storage.Redis
	mock := test.Redis(&r)

	mock.ExpectKeys("cachestore-a", "cacheexpiration-a", "cachestore-a")
	keys, err := r.GetAllKeys(context.Background())
	assert.NoError(t, err)
	// duplicates from SCAN are passed through.
	assert.Equal(t, []string{"cachestore-a", "cacheexpiration-a", "cachestore-a"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}
