package app

import "time"

// Clock abstracts timer scheduling so the staged capture pipeline can run
// against a fake clock in tests. Production uses the wall clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type Timer interface {
	Stop() bool
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// WallClock returns the production Clock.
func WallClock() Clock { return wallClock{} }
