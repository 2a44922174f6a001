// Package registry tracks one limiter per key, creating limiters lazily as
// new keys are seen. It is the per-entity layer (per API key, per IP) that
// wrappers like the HTTP middleware build on.
package registry

import (
	"errors"
	"sync"
)

// Identifier names a rate-limited entity, such as an API key or client IP.
type Identifier string

// Limiter is the per-key limiter surface the registry manages.
// *gcra.Limiter satisfies it.
type Limiter interface {
	Allow() bool
	AllowN(cost uint32) error
}

// LimiterFactory builds the limiter for a key seen for the first time.
type LimiterFactory func() Limiter

// ErrNilFactory reports a registry constructed without a limiter factory.
var ErrNilFactory = errors.New("registry: limiter factory is required")

// Registry holds one limiter per identifier behind a single mutex.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	factory  LimiterFactory
	limiters map[Identifier]Limiter
}

// NewRegistry creates a registry using factory for every new key.
// Limiters for the given users are created eagerly.
func NewRegistry(factory LimiterFactory, users ...Identifier) (*Registry, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	limiters := make(map[Identifier]Limiter)

	for _, user := range users {
		limiters[user] = factory()
	}

	return &Registry{
		factory:  factory,
		limiters: limiters,
	}, nil
}

func (r *Registry) limiter(key Identifier) Limiter {
	lim, ok := r.limiters[key]
	if !ok {
		lim = r.factory()
		r.limiters[key] = lim
	}

	return lim
}

// Allow reports whether a single unit is admitted now for the given key.
func (r *Registry) Allow(key Identifier) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.limiter(key).Allow()
}

// AllowN decides whether a request of the given cost is admitted now for
// the given key, carrying the limiter's full error taxonomy.
func (r *Registry) AllowN(key Identifier, cost uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.limiter(key).AllowN(cost)
}
