package service

import (
	"sync"
	"time"
)

// Ticker is the every-second tick source of the session controller. Start
// replaces any previous subscription; after Stop returns no new tick begins.
type Ticker interface {
	Start(fn func())
	Stop()
}

// ClockTicker fires fn once per interval of wall-clock time.
type ClockTicker struct {
	interval time.Duration

	mu   sync.Mutex
	done chan struct{}
}

func NewClockTicker(interval time.Duration) *ClockTicker {
	if interval <= 0 {
		interval = time.Second
	}
	return &ClockTicker{interval: interval}
}

func (t *ClockTicker) Start(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done != nil {
		close(t.done)
	}
	done := make(chan struct{})
	t.done = done

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// both cases may be ready; a closed done always wins
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()
}

// Stop does not wait for an in-flight tick, so fn may call it.
func (t *ClockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != nil {
		close(t.done)
		t.done = nil
	}
}
