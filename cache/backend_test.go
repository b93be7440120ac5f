package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amirrezaask/cachestore/storage"
)

var errBoom = errors.New("boom")

// recordingBackend wraps a Memory backend, logs every call and can be told to
// fail or to run a hook for specific calls.
type recordingBackend struct {
	*storage.Memory

	mu     sync.Mutex
	calls  []string
	fail   map[string]bool
	before map[string]func()
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		Memory: storage.NewMemory(),
		fail:   map[string]bool{},
		before: map[string]func(){},
	}
}

// failOn makes the call described by "<op> <key>" return errBoom.
func (r *recordingBackend) failOn(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[call] = true
}

func (r *recordingBackend) hook(call string, f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.before[call] = f
}

func (r *recordingBackend) record(call string) error {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	f := r.before[call]
	fail := r.fail[call]
	r.mu.Unlock()

	if f != nil {
		f()
	}
	if fail {
		return errBoom
	}
	return nil
}

func (r *recordingBackend) history() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingBackend) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *recordingBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := r.record("get " + key); err != nil {
		return "", false, err
	}
	return r.Memory.GetItem(ctx, key)
}

func (r *recordingBackend) SetItem(ctx context.Context, key string, value string) error {
	if err := r.record("set " + key); err != nil {
		return err
	}
	return r.Memory.SetItem(ctx, key, value)
}

func (r *recordingBackend) RemoveItem(ctx context.Context, key string) error {
	if err := r.record("remove " + key); err != nil {
		return err
	}
	return r.Memory.RemoveItem(ctx, key)
}

func (r *recordingBackend) MultiRemove(ctx context.Context, keys []string) error {
	if err := r.record(fmt.Sprintf("multiremove %v", keys)); err != nil {
		return err
	}
	return r.Memory.MultiRemove(ctx, keys)
}

func (r *recordingBackend) GetAllKeys(ctx context.Context) ([]string, error) {
	if err := r.record("keys"); err != nil {
		return nil, err
	}
	return r.Memory.GetAllKeys(ctx)
}
