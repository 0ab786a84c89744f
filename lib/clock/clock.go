package clock

import (
	"time"
)

const layout = "2006-01-02T15:04:05Z"

// Clock returns the current time. Stores and the contest core take one so tests can pin time.
type Clock func() time.Time

// Real is the wall clock in UTC.
func Real() time.Time {
	return time.Now().UTC()
}

func Now() string {
	return Format(time.Now())
}

func Format(t time.Time) string {
	return t.UTC().Format(layout)
}

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}
