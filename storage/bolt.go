package storage

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/amirrezaask/cachestore/errors"
)

// Bolt keeps records in a single bbolt bucket inside a local file.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
}

type BoltOptions struct {
	// Bucket defaults to "cachestore".
	Bucket string
	// OpenTimeout bounds waiting for the file lock; defaults to one second.
	OpenTimeout time.Duration
}

func OpenBolt(path string, opts BoltOptions) (*Bolt, error) {
	timeout := opts.OpenTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrap(err, "cannot open bolt file %s", path)
	}
	bucket := []byte("cachestore")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "cannot create bolt bucket %s", bucket)
	}
	return &Bolt{db: db, bucket: bucket}, nil
}

func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *Bolt) GetItem(ctx context.Context, key string) (string, bool, error) {
	var (
		out    string
		exists bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(b.bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		exists = true
		out = string(v)
		return nil
	})
	if err != nil {
		return "", false, errors.Wrap(err, "bolt get %s", key)
	}
	return out, exists, nil
}

func (b *Bolt) SetItem(ctx context.Context, key string, value string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), []byte(value))
	})
	return errors.Wrap(err, "bolt put %s", key)
}

func (b *Bolt) RemoveItem(ctx context.Context, key string) error {
	return b.MultiRemove(ctx, []string{key})
}

// MultiRemove deletes every key inside one read-write transaction.
func (b *Bolt) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		for _, k := range keys {
			if err := bucket.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "bolt delete %d keys", len(keys))
}

func (b *Bolt) GetAllKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "bolt list keys")
	}
	return keys, nil
}
