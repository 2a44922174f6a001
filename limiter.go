package gcra

import "sync"

// Limiter binds an immutable Quota to a State behind a mutex and a clock.
// It is the ready-to-use form of the core for callers that want one
// limiter per resource and do not need to manage time or locking
// themselves. Limiter is safe for concurrent use.
type Limiter struct {
	mu    sync.Mutex
	quota Quota
	state State
	clock clock
}

// NewLimiter creates a limiter for the given quota using the wall clock.
func NewLimiter(q Quota) *Limiter {
	return NewLimiterWithClock(q, realClock{})
}

// NewLimiterWithClock creates a limiter with a custom clock.
// Use this constructor for testing with a mock clock.
func NewLimiterWithClock(q Quota, clock clock) *Limiter {
	return &Limiter{
		quota: q,
		clock: clock,
	}
}

// Quota returns the bound quota.
func (l *Limiter) Quota() Quota {
	return l.quota
}

// Allow reports whether a single unit is admitted now.
func (l *Limiter) Allow() bool {
	return l.AllowN(1) == nil
}

// AllowN decides whether a request of the given cost is admitted now.
// A nil return means admitted; otherwise the error carries the full
// taxonomy of State.CheckAndModifyAt, including the retry hint on
// *NotAllowedError.
func (l *Limiter) AllowN(cost uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state.CheckAndModifyAt(l.quota, l.clock.Now(), cost)
}

// RevertN releases a previously admitted cost back to the limiter.
func (l *Limiter) RevertN(cost uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state.RevertAt(l.quota, l.clock.Now(), cost)
}

// Remaining reports how many units could be admitted right now without waiting.
func (l *Limiter) Remaining() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state.RemainingAt(l.quota, l.clock.Now())
}

// Reset returns the limiter to a fresh state with the full burst available.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Reset()
}
