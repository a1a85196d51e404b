package testutil

import (
	"sync"
	"time"
)

// TestTime is the fixed instant tests start from.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// TestTimeProvider is a clock that only moves when told to. Safe for concurrent use.
type TestTimeProvider struct {
	mu  sync.Mutex
	now time.Time
}

func NewTestTimeProvider(start time.Time) *TestTimeProvider {
	return &TestTimeProvider{now: start}
}

func (p *TestTimeProvider) Now() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

func (p *TestTimeProvider) SetTime(t time.Time) {
	p.mu.Lock()
	p.now = t
	p.mu.Unlock()
}

// AddTime moves the clock forward by d.
func (p *TestTimeProvider) AddTime(d time.Duration) {
	p.mu.Lock()
	p.now = p.now.Add(d)
	p.mu.Unlock()
}
