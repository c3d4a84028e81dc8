// Package clock abstracts time so that timer driven code can be tested
// without sleeping.
package clock

import "time"

type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// New returns the Clock backed by the time package.
func New() Clock {
	return clock{}
}

type clock struct{}

func (clock) Now() time.Time {
	return time.Now()
}

func (clock) NewTicker(d time.Duration) Ticker {
	return ticker{time.NewTicker(d)}
}

type ticker struct {
	*time.Ticker
}

func (t ticker) C() <-chan time.Time {
	return t.Ticker.C
}
