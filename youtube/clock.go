package youtube

import "time"

// Clock abstracts wall-clock time so scheduling decisions are testable.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// realClock is the production Clock backed by time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns the Clock used outside of tests.
func SystemClock() Clock { return realClock{} }
