package players

import "time"

// TimeProvider abstracts the clock so repository writes are testable
type TimeProvider interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
