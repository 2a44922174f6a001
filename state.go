package gcra

import (
	"math"
	"time"
)

// State holds the minimum state GCRA needs: the Theoretical Arrival Time
// (TAT), the virtual scheduler's projected next point of full availability.
// The zero State has never admitted anything and grants a full burst.
//
// State carries no reference to a Quota; the same state may be checked
// against different quotas on different calls. Swapping quotas mid-stream
// is legal and produces a step change in admission behavior.
//
// State is not thread-safe. Concurrent calls on the same State are a data
// race unless the caller supplies its own mutual exclusion; Limiter does
// exactly that for the common case.
type State struct {
	tat time.Time
	set bool
}

// TAT returns the theoretical arrival time and whether it has been set.
// Callers that need durability can persist this single value and restore it
// with SetTAT.
func (s *State) TAT() (time.Time, bool) {
	return s.tat, s.set
}

// SetTAT restores a previously observed theoretical arrival time.
func (s *State) SetTAT(tat time.Time) {
	s.tat = tat
	s.set = true
}

// Reset returns the state to fresh, granting a full burst on the next check.
func (s *State) Reset() {
	*s = State{}
}

// CheckAndModifyAt decides whether a request of the given cost is admitted
// at now under quota q. On admission the state advances and nil is
// returned. On rejection the state is untouched and the error is a
// *NotAllowedError carrying the minimum wait before the identical request
// would be admitted.
//
// A zero cost returns ErrInvalidCost and a cost above q.MaxBurst() returns
// ErrCostExceedsCapacity; both are caller bugs, reported eagerly and
// regardless of state or time.
func (s *State) CheckAndModifyAt(q Quota, now time.Time, cost uint32) error {
	if cost == 0 {
		return ErrInvalidCost
	}

	if cost > q.maxBurst {
		return ErrCostExceedsCapacity
	}

	// An unset TAT, or one in the past, behaves as if the last service
	// completed exactly now: the burst is fully available.
	tat := now
	if s.set && s.tat.After(now) {
		tat = s.tat
	}

	newTAT := tat.Add(q.increment(cost))

	// The request fits iff the projected schedule stays within one full
	// burst period of now. The boundary is inclusive.
	allowAt := newTAT.Add(-q.period)
	if allowAt.After(now) {
		return &NotAllowedError{RetryAfter: allowAt.Sub(now)}
	}

	s.tat = newTAT
	s.set = true

	return nil
}

// RevertAt undoes a prior admission of the given cost, releasing its units
// back to the schedule. A fresh state is left untouched. A TAT already in
// the past resets the state entirely, since the released units have long
// since replenished.
func (s *State) RevertAt(q Quota, now time.Time, cost uint32) error {
	if cost == 0 {
		return ErrInvalidCost
	}

	if !s.set {
		return nil
	}

	if s.tat.Before(now) {
		s.Reset()

		return nil
	}

	s.tat = s.tat.Add(-q.increment(cost))

	return nil
}

// RemainingAt reports how many units could still be admitted at now under
// quota q without waiting. A fresh state, or one whose TAT is not in the
// future, has the full burst available.
func (s *State) RemainingAt(q Quota, now time.Time) uint32 {
	if q.period <= 0 {
		return 0
	}

	if !s.set || !s.tat.After(now) {
		return q.maxBurst
	}

	// consumed = time_to_tat * (maxBurst/period), rounded up so that a
	// partially consumed unit counts as gone.
	timeToTAT := s.tat.Sub(now).Seconds()
	consumed := uint32(math.Ceil(timeToTAT * float64(q.maxBurst) / q.period.Seconds()))

	if consumed >= q.maxBurst {
		return 0
	}

	return q.maxBurst - consumed
}
