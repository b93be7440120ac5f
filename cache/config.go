package cache

import (
	"strings"
	"time"

	"github.com/amirrezaask/cachestore/env"
	"github.com/amirrezaask/cachestore/errors"
)

const (
	DefaultValuePrefix  = "cachestore-"
	DefaultExpiryPrefix = "cacheexpiration-"
	DefaultUnit         = time.Minute
)

// Config fixes the persisted layout of a Store. Two stores sharing a backend
// must use disjoint prefixes.
type Config struct {
	ValuePrefix  string        `env:"CACHE_VALUE_PREFIX" envDefault:"cachestore-"`
	ExpiryPrefix string        `env:"CACHE_EXPIRY_PREFIX" envDefault:"cacheexpiration-"`
	Unit         time.Duration `env:"CACHE_TIME_UNIT" envDefault:"1m"`
}

func DefaultConfig() Config {
	return Config{
		ValuePrefix:  DefaultValuePrefix,
		ExpiryPrefix: DefaultExpiryPrefix,
		Unit:         DefaultUnit,
	}
}

func ConfigFromEnv() (Config, error) {
	var c Config
	if err := env.Load(&c); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// Validate rejects prefixes that would let value and expiry records be
// mistaken for each other, and units that are not whole milliseconds.
func (c Config) Validate() error {
	switch {
	case c.ValuePrefix == "" || c.ExpiryPrefix == "":
		return errors.Wrap(ErrInvalidConfig, "prefixes must not be empty")
	case strings.HasPrefix(c.ValuePrefix, c.ExpiryPrefix) || strings.HasPrefix(c.ExpiryPrefix, c.ValuePrefix):
		return errors.Wrap(ErrInvalidConfig, "prefixes %q and %q overlap", c.ValuePrefix, c.ExpiryPrefix)
	case c.Unit < time.Millisecond:
		return errors.Wrap(ErrInvalidConfig, "time unit %s is below one millisecond", c.Unit)
	case c.Unit%time.Millisecond != 0:
		return errors.Wrap(ErrInvalidConfig, "time unit %s is not a whole number of milliseconds", c.Unit)
	}
	return nil
}
