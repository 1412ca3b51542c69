package service

import (
	"context"
	"errors"
	"sync"

	"jtimer/backend/internal/repository"
)

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	failOn string
}

func newMemStore(initial map[string]string) *memStore {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &memStore{values: values}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn == key {
		return errors.New("disk full")
	}
	s.values[key] = value
	return nil
}

func (s *memStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *memStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// manualTicker fires only when the test says so.
type manualTicker struct {
	mu     sync.Mutex
	active func()
	last   func()
	starts int
	stops  int
}

func (t *manualTicker) Start(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = fn
	t.last = fn
	t.starts++
}

func (t *manualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = nil
	t.stops++
}

func (t *manualTicker) fire(n int) {
	for i := 0; i < n; i++ {
		t.mu.Lock()
		fn := t.active
		t.mu.Unlock()
		if fn == nil {
			return
		}
		fn()
	}
}

// fireStale delivers a tick from the most recent subscription even after Stop.
func (t *manualTicker) fireStale() {
	t.mu.Lock()
	fn := t.last
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type fakeAlarm struct {
	mu    sync.Mutex
	plays int
	stops int
	done  func()
}

func (a *fakeAlarm) Play(done func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.plays++
	a.done = done
}

func (a *fakeAlarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stops++
	a.done = nil
}

func (a *fakeAlarm) finish() {
	a.mu.Lock()
	done := a.done
	a.done = nil
	a.mu.Unlock()
	if done != nil {
		done()
	}
}

func (a *fakeAlarm) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.plays, a.stops
}

type fakePlayback struct {
	mu         sync.Mutex
	playing    bool
	wasPlaying bool
	pauses     int
	resumes    int
}

func (p *fakePlayback) PauseForAlarm(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wasPlaying = p.playing
	if p.playing {
		p.pauses++
		p.playing = false
	}
	return p.wasPlaying
}

func (p *fakePlayback) ResumeAfterAlarm(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.wasPlaying {
		return false
	}
	p.wasPlaying = false
	p.resumes++
	p.playing = true
	return true
}

// slowPlayback holds PauseForAlarm until release is closed.
type slowPlayback struct {
	entered chan struct{}
	release chan struct{}
}

func newSlowPlayback() *slowPlayback {
	return &slowPlayback{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (p *slowPlayback) PauseForAlarm(context.Context) bool {
	p.entered <- struct{}{}
	<-p.release
	return false
}

func (p *slowPlayback) ResumeAfterAlarm(context.Context) bool { return false }

// gatedStore blocks the first Set of key until release is closed.
type gatedStore struct {
	*memStore
	key     string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedStore(key string) *gatedStore {
	return &gatedStore{
		memStore: newMemStore(nil),
		key:      key,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (s *gatedStore) Set(ctx context.Context, key, value string) error {
	if key == s.key {
		first := false
		s.once.Do(func() { first = true })
		if first {
			close(s.entered)
			<-s.release
		}
	}
	return s.memStore.Set(ctx, key, value)
}
