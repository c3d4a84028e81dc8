package clock

import (
	"fmt"
	"sync"
	"time"
)

// Mock is a Clock that only moves when told to. Tickers fire synchronously
// from Set and Add.
type Mock struct {
	mu      sync.Mutex
	now     time.Time
	tickers map[*mockTicker]struct{}
}

var _ Clock = &Mock{}

func NewMock(now time.Time) *Mock {
	return &Mock{
		now:     now,
		tickers: map[*mockTicker]struct{}{},
	}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// Set moves the clock to now, which must not be before the current time,
// and fires all tickers that became due. Like time.Ticker, ticks are
// dropped when the previous one was not yet received.
func (m *Mock) Set(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Before(m.now) {
		panic(fmt.Sprintf("clock.Mock: cannot go back in time from %s to %s", m.now, now))
	}

	m.now = now

	for t := range m.tickers {
		for !t.next.After(now) {
			select {
			case t.c <- t.next:
			default:
			}

			t.next = t.next.Add(t.d)
		}
	}
}

// Add moves the clock forward by d and returns the new time.
func (m *Mock) Add(d time.Duration) time.Time {
	now := m.Now().Add(d)
	m.Set(now)

	return now
}

func (m *Mock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock.Mock: non-positive interval for NewTicker")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := &mockTicker{
		mock: m,
		c:    make(chan time.Time, 1),
		d:    d,
		next: m.now.Add(d),
	}

	m.tickers[t] = struct{}{}

	return t
}

// Tickers returns the number of tickers that were not stopped.
func (m *Mock) Tickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tickers)
}

type mockTicker struct {
	mock *Mock
	c    chan time.Time
	d    time.Duration
	next time.Time
}

func (t *mockTicker) C() <-chan time.Time {
	return t.c
}

func (t *mockTicker) Stop() {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()

	delete(t.mock.tickers, t)
}
