package gcra

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidQuota reports a quota with a zero burst or a non-positive
	// period. Construction-time, non-retryable.
	ErrInvalidQuota = errors.New("gcra: quota requires a burst of at least 1 and a positive period")

	// ErrInvalidCost reports a zero cost. A zero-cost request would trivially
	// always pass and communicates nothing; it is rejected as a caller bug.
	ErrInvalidCost = errors.New("gcra: cost must be at least 1")

	// ErrCostExceedsCapacity reports a cost larger than the quota's burst.
	// Such a request can never be admitted, no matter how long the caller
	// waits, so it is surfaced distinctly rather than as a rejection with a
	// meaningless retry hint.
	ErrCostExceedsCapacity = errors.New("gcra: cost exceeds quota capacity")
)

// NotAllowedError is the routine rejection outcome: the request does not
// fit right now but would after RetryAfter. It is an expected branch, not
// an exceptional failure; callers inspect it with errors.As or the
// RetryAfter helper.
type NotAllowedError struct {
	// RetryAfter is the minimum wait, from the moment of rejection, before
	// the identical request would be admitted, assuming no other admissions
	// in between. Always non-negative.
	RetryAfter time.Duration
}

func (e *NotAllowedError) Error() string {
	return fmt.Sprintf("gcra: not allowed, retry after %s", e.RetryAfter)
}

// RetryAfter extracts the wait hint from a rejection. It reports false for
// nil errors and for the non-retryable error sentinels.
func RetryAfter(err error) (time.Duration, bool) {
	var notAllowed *NotAllowedError
	if errors.As(err, &notAllowed) {
		return notAllowed.RetryAfter, true
	}

	return 0, false
}
