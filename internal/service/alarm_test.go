package service

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBellAlarmRingsThenFinishes(t *testing.T) {
	var out syncBuffer
	alarm := NewBellAlarm(&out, 3, time.Millisecond)

	done := make(chan struct{})
	alarm.Play(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("alarm never finished")
	}
	if got := out.String(); got != "\a\a\a" {
		t.Fatalf("expected three bells, got %q", got)
	}
}

func TestBellAlarmStopSuppressesDone(t *testing.T) {
	var out syncBuffer
	alarm := NewBellAlarm(&out, 100, 5*time.Millisecond)

	var finished atomic.Bool
	alarm.Play(func() { finished.Store(true) })
	time.Sleep(12 * time.Millisecond)
	alarm.Stop()

	time.Sleep(30 * time.Millisecond)
	if finished.Load() {
		t.Fatal("done called after Stop")
	}
	if n := len(out.String()); n == 0 || n >= 100 {
		t.Fatalf("expected a few bells before stop, got %d", n)
	}
}

func TestBellAlarmReplayCancelsPrevious(t *testing.T) {
	alarm := NewBellAlarm(&syncBuffer{}, 2, time.Millisecond)

	var first atomic.Bool
	second := make(chan struct{})
	alarm.Play(func() { first.Store(true) })
	alarm.Play(func() { close(second) })

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second alarm never finished")
	}
	if first.Load() {
		t.Fatal("replaced alarm must not report completion")
	}
}
