// Package gcra implements the Generic Cell Rate Algorithm, a
// continuous-time admission-control primitive originally from ATM traffic
// shaping. The core is the pair Quota/State: a Quota describes the allowed
// rate, a State tracks a single timestamp (the Theoretical Arrival Time),
// and each check either admits a request and advances the state or rejects
// it with the minimum wait before it would be admitted.
//
// The core is pure and deterministic: time is always passed in explicitly,
// and State carries no lock. Limiter wraps a Quota and a State behind a
// mutex and a clock for callers that want a ready-to-use limiter.
package gcra

import "time"

// Quota describes a rate limit: up to MaxBurst cost units may be admitted
// instantly from a fresh state, replenishing fully over Period. A Quota is
// an immutable value, safe to share across any number of states and
// goroutines without synchronization.
type Quota struct {
	maxBurst uint32
	period   time.Duration
	emission time.Duration
}

// NewQuota creates a Quota allowing maxBurst units per period.
// It returns ErrInvalidQuota if maxBurst is zero or period is not positive.
func NewQuota(maxBurst uint32, period time.Duration) (Quota, error) {
	if maxBurst < 1 || period <= 0 {
		return Quota{}, ErrInvalidQuota
	}

	return Quota{
		maxBurst: maxBurst,
		period:   period,
		emission: period / time.Duration(maxBurst),
	}, nil
}

// MaxBurst returns the number of units admittable instantly from a fresh state.
func (q Quota) MaxBurst() uint32 { return q.maxBurst }

// Period returns the time over which MaxBurst units fully replenish.
func (q Quota) Period() time.Duration { return q.period }

// EmissionInterval returns the steady-state time cost of one unit,
// Period/MaxBurst. The division truncates to whole nanoseconds, so a period
// that is not a multiple of the burst loses the remainder.
func (q Quota) EmissionInterval() time.Duration { return q.emission }

// increment is the virtual time a request of the given cost adds to the schedule.
func (q Quota) increment(cost uint32) time.Duration {
	return q.emission * time.Duration(cost)
}
