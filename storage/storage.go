// Package storage defines the key-value contract the cache engine runs on and
// ships a few implementations of it.
//
// Every operation is individually atomic for the single key, or for the batch,
// it is given. Nothing is promised across calls: the engine never assumes two
// backend calls observe a consistent snapshot.
package storage

import "context"

type Backend interface {
	// GetItem returns ("", false, nil) when key is absent.
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key string, value string) error
	// RemoveItem on an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
	// MultiRemove deletes keys in one request. Absent keys are ignored and an
	// empty batch is a no-op.
	MultiRemove(ctx context.Context, keys []string) error
	// GetAllKeys enumerates every key the backend holds, including keys that
	// belong to other consumers of the same namespace.
	GetAllKeys(ctx context.Context) ([]string, error)
}
