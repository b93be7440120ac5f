// Package lock provides named, expiring mutual exclusion across goroutines
// (InMemory) or across processes sharing a redis server (Redis).
package lock

import (
	"github.com/amirrezaask/cachestore/errors"
)

// ErrLocked is returned by Lock when the key is already held.
var ErrLocked = errors.New("lock is held")
