package gcra

import "time"

// clock supplies the current time. Any value with a Now method satisfies
// it, so tests and callers with their own time source can inject one
// through the WithClock constructors.
type clock interface {
	Now() time.Time
}

type realClock struct{}

func (c realClock) Now() time.Time {
	return time.Now()
}
