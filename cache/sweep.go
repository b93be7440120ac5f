package cache

import (
	"context"
	"strconv"

	"github.com/amirrezaask/cachestore/errors"
	"github.com/amirrezaask/cachestore/set"
)

type ExpiryState int

const (
	// NoTTL means the key has no expiry record.
	NoTTL ExpiryState = iota
	Active
	Expired
)

func (e ExpiryState) String() string {
	switch e {
	case NoTTL:
		return "no_ttl"
	case Active:
		return "active"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// readExpiry returns the stored bucket of key. A record that does not hold an
// integer is reported as absent.
func (s *Store[V]) readExpiry(ctx context.Context, key string) (int64, bool, error) {
	raw, ok, err := s.backend.GetItem(ctx, s.keys.expiry(key))
	if err != nil {
		return 0, false, errors.Wrap(err, "cannot read expiry of %s", key)
	}
	if !ok {
		return 0, false, nil
	}
	bucket, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.WarnContext(ctx, "ignoring malformed expiry record", "key", key, "record", raw)
		return 0, false, nil
	}
	return bucket, true, nil
}

// Expiry reports whether key has a TTL and, if so, whether it has passed. It
// only looks at the expiry record and never removes anything.
func (s *Store[V]) Expiry(ctx context.Context, key string) (ExpiryState, error) {
	bucket, ok, err := s.readExpiry(ctx, key)
	if err != nil {
		return NoTTL, err
	}
	if !ok {
		return NoTTL, nil
	}
	if s.clock.due(bucket) {
		return Expired, nil
	}
	return Active, nil
}

// IsExpired is true only for a key whose expiry record is due. A key without
// a TTL and a key whose TTL has not passed both report false; use Expiry to
// tell them apart.
func (s *Store[V]) IsExpired(ctx context.Context, key string) (bool, error) {
	state, err := s.Expiry(ctx, key)
	return state == Expired, err
}

type sweepResult struct {
	raw   string
	swept bool
	err   error
}

// FlushExpired removes every entry whose expiry bucket has been reached and
// returns their raw encoded values in no meaningful order.
//
// Each candidate key is checked and removed by its own goroutine. A failing
// key does not stop the others; failures are joined into the returned error
// alongside whatever was swept.
func (s *Store[V]) FlushExpired(ctx context.Context) ([]string, error) {
	all, err := s.backend.GetAllKeys(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot list backend keys")
	}

	candidates := set.Set[string]{}
	for _, k := range all {
		if key, ok := s.keys.fromExpiry(k); ok {
			candidates.Add(key)
		}
	}

	results := make(chan sweepResult, candidates.Len())
	for key := range candidates {
		go func() {
			results <- s.sweep(ctx, key)
		}()
	}

	swept := []string{}
	var errs []error
	for range candidates.Len() {
		r := <-results
		switch {
		case r.err != nil:
			errs = append(errs, r.err)
		case r.swept:
			swept = append(swept, r.raw)
		}
	}

	if len(errs) > 0 {
		s.logger.ErrorContext(ctx, "some expired entries could not be flushed", "failed", len(errs), "swept", len(swept))
	}
	return swept, errors.Join(errs...)
}

func (s *Store[V]) sweep(ctx context.Context, key string) sweepResult {
	bucket, ok, err := s.readExpiry(ctx, key)
	if err != nil {
		return sweepResult{err: err}
	}
	if !ok || !s.clock.due(bucket) {
		return sweepResult{}
	}

	raw, hasValue, err := s.backend.GetItem(ctx, s.keys.value(key))
	if err != nil {
		return sweepResult{err: errors.Wrap(err, "cannot read value of expired %s", key)}
	}
	if err := s.backend.MultiRemove(ctx, s.keys.both(key)); err != nil {
		return sweepResult{err: errors.Wrap(err, "cannot remove expired %s", key)}
	}
	s.logger.DebugContext(ctx, "flushed expired cache entry", "key", key)
	return sweepResult{raw: raw, swept: hasValue}
}

// Flush removes every record under either prefix, expired or not, in one
// batch. Keys outside both prefixes are left alone.
func (s *Store[V]) Flush(ctx context.Context) error {
	all, err := s.backend.GetAllKeys(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot list backend keys")
	}

	owned := set.Set[string]{}
	for _, k := range all {
		if s.keys.owned(k) {
			owned.Add(k)
		}
	}
	if owned.Len() == 0 {
		return nil
	}
	return errors.Wrap(s.backend.MultiRemove(ctx, owned.Slice()), "cannot flush %d records", owned.Len())
}
