package service

import (
	"io"
	"log"
	"sync"
	"time"
)

// Alarm is the audible alert raised on completion. Play must return without
// calling done; done runs later, once the alert finishes on its own. Stop
// silences it and suppresses done.
type Alarm interface {
	Play(done func())
	Stop()
}

// BellAlarm rings a terminal bell on w a fixed number of times.
type BellAlarm struct {
	w        io.Writer
	rings    int
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func NewBellAlarm(w io.Writer, rings int, interval time.Duration) *BellAlarm {
	if rings <= 0 {
		rings = 1
	}
	return &BellAlarm{w: w, rings: rings, interval: interval}
}

func (a *BellAlarm) Play(done func()) {
	a.mu.Lock()
	if a.stop != nil {
		close(a.stop)
	}
	stop := make(chan struct{})
	a.stop = stop
	a.mu.Unlock()

	go func() {
		for i := 0; i < a.rings; i++ {
			if _, err := io.WriteString(a.w, "\a"); err != nil {
				log.Printf("alarm: %v", err)
			}
			select {
			case <-stop:
				return
			case <-time.After(a.interval):
			}
		}

		a.mu.Lock()
		current := a.stop == stop
		if current {
			a.stop = nil
		}
		a.mu.Unlock()
		if current {
			done()
		}
	}()
}

func (a *BellAlarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
}
