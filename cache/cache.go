// Package cache is a TTL cache over a storage.Backend.
//
// Each logical entry is kept as two backend records: the encoded value under
// Config.ValuePrefix+key and, when a TTL was given, the expiry bucket under
// Config.ExpiryPrefix+key. Time is counted in buckets of Config.Unit, and an
// entry is expired once the current bucket reaches the stored one.
//
// The backend is the only state. Nothing is locked: sequences of backend calls
// may interleave with other callers, and the last writer wins.
package cache

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"github.com/amirrezaask/cachestore/errors"
	"github.com/amirrezaask/cachestore/storage"
)

var (
	ErrNoEntry       = errors.New("no entry")
	ErrEntryExpired  = errors.New("entry expired")
	ErrInvalidConfig = errors.New("invalid cache config")
)

type Store[V any] struct {
	backend storage.Backend
	codec   Codec[V]
	keys    keys
	clock   quantizer
	logger  *slog.Logger
}

type Option[V any] func(*Store[V])

func WithCodec[V any](c Codec[V]) Option[V] {
	return func(s *Store[V]) { s.codec = c }
}

func WithClock[V any](c Clock) Option[V] {
	return func(s *Store[V]) { s.clock.clock = c }
}

func WithLogger[V any](l *slog.Logger) Option[V] {
	return func(s *Store[V]) { s.logger = l }
}

func New[V any](backend storage.Backend, cfg Config, opts ...Option[V]) (*Store[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store[V]{
		backend: backend,
		codec:   JSONCodec[V]{},
		keys:    keys{valuePrefix: cfg.ValuePrefix, expiryPrefix: cfg.ExpiryPrefix},
		clock:   newQuantizer(cfg.Unit, systemClock{}),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Get returns the value stored under key.
//
// It fails with ErrEntryExpired when the entry's expiry bucket has been
// reached, after removing both of its records. It fails with ErrNoEntry when
// there is no value record or the value cannot be decoded.
func (s *Store[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	state, err := s.Expiry(ctx, key)
	if err != nil {
		return zero, err
	}
	if state == Expired {
		s.logger.DebugContext(ctx, "removing expired cache entry", "key", key)
		err := errors.Wrap(s.backend.MultiRemove(ctx, s.keys.both(key)), "cannot remove expired entry %s", key)
		return zero, errors.Join(ErrEntryExpired, err)
	}

	// the entry may have been removed since the expiry check; that is a miss.
	raw, ok, err := s.backend.GetItem(ctx, s.keys.value(key))
	if err != nil {
		return zero, errors.Wrap(err, "cannot read value of %s", key)
	}
	if !ok {
		return zero, ErrNoEntry
	}

	v, err := s.codec.Decode(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "cannot decode cached value, treating as miss", "key", key, "err", err)
		return zero, ErrNoEntry
	}
	return v, nil
}

// Set stores value under key. With ttl > 0 the entry expires ttl units after
// the current bucket, or never once that would pass math.MaxInt64; otherwise it never expires and any previous expiry
// record is removed before the value is written.
func (s *Store[V]) Set(ctx context.Context, key string, value V, ttl int64) error {
	raw, err := s.codec.Encode(value)
	if err != nil {
		return errors.Wrap(err, "cannot encode value of %s", key)
	}

	if ttl > 0 {
		bucket := s.clock.current()
		if ttl > math.MaxInt64-bucket {
			bucket = math.MaxInt64
		} else {
			bucket += ttl
		}
		err := s.backend.SetItem(ctx, s.keys.expiry(key), strconv.FormatInt(bucket, 10))
		if err != nil {
			return errors.Wrap(err, "cannot write expiry of %s", key)
		}
	} else {
		if err := s.backend.RemoveItem(ctx, s.keys.expiry(key)); err != nil {
			return errors.Wrap(err, "cannot clear expiry of %s", key)
		}
	}

	return errors.Wrap(s.backend.SetItem(ctx, s.keys.value(key), raw), "cannot write value of %s", key)
}

// Remove deletes both records of key in one batch.
func (s *Store[V]) Remove(ctx context.Context, key string) error {
	return errors.Wrap(s.backend.MultiRemove(ctx, s.keys.both(key)), "cannot remove %s", key)
}
