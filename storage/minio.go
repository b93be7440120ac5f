package storage

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/amirrezaask/cachestore/errors"
	"github.com/amirrezaask/cachestore/retry"
)

const (
	_MINIO_HEALTH_CHECK_AFTER = time.Second * 2
	_MINIO_NO_SUCH_KEY        = "NoSuchKey"
)

// Minio keeps one object per key in a single bucket.
type Minio struct {
	bucketName string

	c                 *minio.Client
	cancelHealthCheck context.CancelFunc
}

type MinioConfig struct {
	Endpoint        string        `env:"MINIO_ENDPOINT,required"`
	AccessKeyID     string        `env:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"MINIO_SECRET_ACCESS_KEY"`
	Bucket          string        `env:"MINIO_BUCKET" envDefault:"cachestore"`
	Region          string        `env:"MINIO_REGION" envDefault:"us-east-1"`
	Secure          bool          `env:"MINIO_SECURE"`
	ConnectRetries  int           `env:"MINIO_CONNECT_RETRIES" envDefault:"3"`
	ConnectInterval time.Duration `env:"MINIO_CONNECT_INTERVAL" envDefault:"1s"`
}

// NewMinio connects, creating the bucket when it does not exist yet.
func NewMinio(ctx context.Context, c MinioConfig) (*Minio, error) {
	client, err := minio.New(c.Endpoint, &minio.Options{
		Region: c.Region,
		Creds:  credentials.NewStaticV4(c.AccessKeyID, c.SecretAccessKey, ""),
		Secure: c.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "minio client cannot be created")
	}

	var exists bool
	err = retry.Do(ctx, func(ctx context.Context) error {
		var err error
		exists, err = client.BucketExists(ctx, c.Bucket)
		return err
	}, c.ConnectRetries, c.ConnectInterval)
	if err != nil {
		return nil, errors.Wrap(err, "minio bucket exists failed")
	}

	if !exists {
		err = client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{Region: c.Region})
		if err != nil {
			return nil, errors.Wrap(err, "cannot make new minio bucket")
		}
	}

	cancel, err := client.HealthCheck(_MINIO_HEALTH_CHECK_AFTER)
	if err != nil {
		return nil, errors.Wrap(err, "cannot start minio health check")
	}

	return &Minio{c: client, bucketName: c.Bucket, cancelHealthCheck: cancel}, nil
}

func (m *Minio) Close() error {
	if m.cancelHealthCheck != nil {
		m.cancelHealthCheck()
	}
	return nil
}

// Online reports the state seen by the background health check.
func (m *Minio) Online() bool {
	return m.c.IsOnline()
}

func (m *Minio) GetItem(ctx context.Context, key string) (string, bool, error) {
	obj, err := m.c.GetObject(ctx, m.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return missingOr(err, key)
	}
	defer obj.Close()

	bs, err := io.ReadAll(obj)
	if err != nil {
		return missingOr(err, key)
	}
	return string(bs), true, nil
}

func missingOr(err error, key string) (string, bool, error) {
	if minio.ToErrorResponse(err).Code == _MINIO_NO_SUCH_KEY {
		return "", false, nil
	}
	return "", false, errors.Wrap(err, "minio get %s", key)
}

func (m *Minio) SetItem(ctx context.Context, key string, value string) error {
	_, err := m.c.PutObject(ctx, m.bucketName, key, strings.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	return errors.Wrap(err, "minio put %s", key)
}

func (m *Minio) RemoveItem(ctx context.Context, key string) error {
	err := m.c.RemoveObject(ctx, m.bucketName, key, minio.RemoveObjectOptions{})
	return errors.Wrap(err, "minio remove %s", key)
}

// MultiRemove sends one bulk delete request. Per-object failures are joined.
func (m *Minio) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objects <- minio.ObjectInfo{Key: k}
	}
	close(objects)

	var errs []error
	for rerr := range m.c.RemoveObjects(ctx, m.bucketName, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, errors.Wrap(rerr.Err, "minio remove %s", rerr.ObjectName))
	}
	return errors.Join(errs...)
}

func (m *Minio) GetAllKeys(ctx context.Context) ([]string, error) {
	// stops the lister goroutine if we bail out early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range m.c.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, "minio list objects")
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
