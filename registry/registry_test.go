package registry_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serroba/gcra"
	"github.com/serroba/gcra/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) advance(by time.Duration) {
	c.now = c.now.Add(by)
}

func newTestRegistry(t *testing.T, maxBurst uint32, period time.Duration, clock *testClock) *registry.Registry {
	t.Helper()

	q, err := gcra.NewQuota(maxBurst, period)
	require.NoError(t, err)

	reg, err := registry.NewRegistry(func() registry.Limiter {
		return gcra.NewLimiterWithClock(q, clock)
	})
	require.NoError(t, err)

	return reg
}

func TestNewRegistry_NilFactory(t *testing.T) {
	t.Parallel()

	_, err := registry.NewRegistry(nil)
	require.ErrorIs(t, err, registry.ErrNilFactory)
}

func TestRegistry_Allow_PerKeyIsolation(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Now()}
	reg := newTestRegistry(t, 2, time.Second, clock)

	// Exhaust one key's burst.
	require.True(t, reg.Allow("alice"))
	require.True(t, reg.Allow("alice"))
	require.False(t, reg.Allow("alice"))

	// Other keys keep their full burst.
	require.True(t, reg.Allow("bob"))
	require.True(t, reg.Allow("bob"))
	require.False(t, reg.Allow("bob"))
}

func TestRegistry_Allow_Replenishes(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Now()}
	reg := newTestRegistry(t, 2, time.Second, clock)

	require.True(t, reg.Allow("alice"))
	require.True(t, reg.Allow("alice"))
	require.False(t, reg.Allow("alice"))

	clock.advance(500 * time.Millisecond)
	require.True(t, reg.Allow("alice"))
	require.False(t, reg.Allow("alice"))
}

func TestRegistry_EagerUsers(t *testing.T) {
	t.Parallel()

	q, err := gcra.NewQuota(1, time.Second)
	require.NoError(t, err)

	var built atomic.Int32

	reg, err := registry.NewRegistry(func() registry.Limiter {
		built.Add(1)

		return gcra.NewLimiter(q)
	}, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, int32(2), built.Load(), "seed users should be created eagerly")

	// Known keys reuse their limiter; unknown keys build lazily.
	reg.Allow("alice")
	assert.Equal(t, int32(2), built.Load())

	reg.Allow("carol")
	assert.Equal(t, int32(3), built.Load())
}

func TestRegistry_AllowN_ErrorTaxonomy(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Now()}
	reg := newTestRegistry(t, 2, 2*time.Second, clock)

	require.ErrorIs(t, reg.AllowN("alice", 3), gcra.ErrCostExceedsCapacity)

	require.NoError(t, reg.AllowN("alice", 2))

	d, ok := gcra.RetryAfter(reg.AllowN("alice", 1))
	require.True(t, ok)
	assert.Equal(t, time.Second, d)
}

func TestRegistry_Allow_Concurrent(t *testing.T) {
	t.Parallel()

	q, err := gcra.NewQuota(100, time.Hour)
	require.NoError(t, err)

	reg, err := registry.NewRegistry(func() registry.Limiter {
		return gcra.NewLimiter(q)
	})
	require.NoError(t, err)

	var (
		allowed atomic.Int64
		wg      sync.WaitGroup
	)

	for i := 0; i < 200; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if reg.Allow("shared") {
				allowed.Add(1)
			}
		}()
	}

	wg.Wait()

	require.Equal(t, int64(100), allowed.Load())
}
