package test

import (
	"github.com/go-redis/redismock/v9"

	"github.com/amirrezaask/cachestore/storage"
)

type redisMock struct {
	redismock.ClientMock
}

func (r *redisMock) ExpectRecord(key, value string) {
	r.ExpectGet(key).SetVal(value)
}

func (r *redisMock) ExpectMissing(key string) {
	r.ExpectGet(key).RedisNil()
}

func (r *redisMock) ExpectStore(key, value string) {
	r.ExpectSet(key, value, 0).SetVal("OK")
}

func (r *redisMock) ExpectRemove(keys ...string) {
	r.ExpectDel(keys...).SetVal(int64(len(keys)))
}

// ExpectKeys answers a single full-keyspace SCAN page.
func (r *redisMock) ExpectKeys(keys ...string) {
	r.ExpectScan(0, "*", 0).SetVal(keys, 0)
}

// Redis points target at a mocked client and returns the mock to program.
func Redis(target **storage.Redis) *redisMock {
	client, mock := redismock.NewClientMock()
	*target = storage.NewRedisFromClient(client)
	return &redisMock{mock}
}
