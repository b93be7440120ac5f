package lock

import (
	"context"
	"sync"
	"time"

	"github.com/amirrezaask/cachestore/errors"
)

type holding struct {
	token uint64
	until time.Time
}

type InMemory struct {
	mu     sync.Mutex
	held   map[string]holding
	tokens uint64
	now    func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{held: map[string]holding{}, now: time.Now}
}

func (i *InMemory) Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	now := i.now()
	if h, ok := i.held[key]; ok && now.Before(h.until) {
		return nil, errors.Wrap(ErrLocked, "key('%s')", key)
	}
	i.tokens++
	token := i.tokens
	i.held[key] = holding{token: token, until: now.Add(ttl)}

	return func(context.Context) error {
		i.mu.Lock()
		defer i.mu.Unlock()
		if h, ok := i.held[key]; ok && h.token == token {
			delete(i.held, key)
		}
		return nil
	}, nil
}
