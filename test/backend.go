package test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/amirrezaask/cachestore/storage"
)

// Records reads every record of b.
func Records(t *testing.T, b storage.Backend) map[string]string {
	t.Helper()
	ctx := context.Background()
	keys, err := b.GetAllKeys(ctx)
	if err != nil {
		t.Fatalf("cannot list backend keys: %s", err)
	}
	out := map[string]string{}
	for _, k := range keys {
		v, ok, err := b.GetItem(ctx, k)
		if err != nil {
			t.Fatalf("cannot read %s: %s", k, err)
		}
		if ok {
			out[k] = v
		}
	}
	return out
}

func dumpAndFail(t *testing.T, b storage.Backend, format string, args ...any) {
	t.Helper()
	records := Records(t, b)
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("backend records:")
	spew.Dump(keys, records)
	t.Fatalf(format, args...)
}

func AssertRecord(t *testing.T, b storage.Backend, key, want string) {
	t.Helper()
	have, ok, err := b.GetItem(context.Background(), key)
	if err != nil {
		t.Fatalf("cannot read %s: %s", key, err)
	}
	if !ok {
		dumpAndFail(t, b, "expected record %s to exist", key)
	}
	if have != want {
		dumpAndFail(t, b, "record %s: expected %q have %q", key, want, have)
	}
}

func AssertNoRecord(t *testing.T, b storage.Backend, keys ...string) {
	t.Helper()
	for _, key := range keys {
		_, ok, err := b.GetItem(context.Background(), key)
		if err != nil {
			t.Fatalf("cannot read %s: %s", key, err)
		}
		if ok {
			dumpAndFail(t, b, "expected record %s to be absent", key)
		}
	}
}
