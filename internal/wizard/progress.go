package wizard

import (
	"context"
	"sync"
	"time"
)

// progressMeter is the cosmetic progress shown while the backend works.
// It creeps up to a cap on its own; only a finished generation takes it to 100.
type progressMeter struct {
	mu      sync.Mutex
	view    View
	value   int
	step    int
	cap     int
	stopped bool
}

func newProgressMeter(view View, step, cap int) *progressMeter {
	return &progressMeter{view: view, step: step, cap: cap}
}

// Run advances the meter every interval until ctx is done.
func (m *progressMeter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.step <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.advance()
		}
	}
}

func (m *progressMeter) advance() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped || m.value >= m.cap {
		return
	}

	m.value = min(m.value+m.step, m.cap)
	m.show()
}

// Reset shows an empty bar.
func (m *progressMeter) Reset() {
	m.publish(0)
}

// Complete jumps to 100.
func (m *progressMeter) Complete() {
	m.publish(100)
}

func (m *progressMeter) publish(value int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}

	m.value = value
	m.show()
}

// Stop detaches the view; later updates are dropped.
func (m *progressMeter) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *progressMeter) Value() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *progressMeter) show() {
	if m.view != nil {
		m.view.Progress(m.value)
	}
}
