package simulator

import (
	"sync"
	"time"
)

// fakeClock — управляемые вручную часы для тестов планировщика.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{
		c:       make(chan time.Time),
		stopped: make(chan struct{}),
		period:  d,
		next:    c.now.Add(d),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance сдвигает время и доставляет тикерам все срабатывания,
// наступившие к новому моменту, в порядке их расписания.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := append([]*fakeTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		for _, at := range t.due(now) {
			select {
			case t.c <- at:
			case <-t.stopped:
			}
		}
	}
}

type fakeTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once

	mu     sync.Mutex
	period time.Duration
	next   time.Time
}

// due возвращает моменты срабатывания не позже now и сдвигает расписание.
func (t *fakeTicker) due(now time.Time) []time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.period <= 0 {
		return nil
	}
	var out []time.Time
	for !t.next.After(now) {
		out = append(out, t.next)
		t.next = t.next.Add(t.period)
	}
	return out
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}
