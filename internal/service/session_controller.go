package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"jtimer/backend/internal/model"
)

const (
	persistTimeout  = 5 * time.Second
	playbackTimeout = 15 * time.Second
)

var ErrInvalidMode = errors.New("mode must be one of work, shortBreak, longBreak")

// Playback is the part of the playback adapter the controller drives around
// completions.
type Playback interface {
	PauseForAlarm(ctx context.Context) bool
	ResumeAfterAlarm(ctx context.Context) bool
}

// SettingsUpdate carries a partial duration update; nil fields are left alone.
type SettingsUpdate struct {
	WorkMinutes       *int
	ShortBreakMinutes *int
	LongBreakMinutes  *int
}

// SessionController owns the countdown and mode state machine together with
// the alarm/mute sub-state. All state changes happen under mu.
type SessionController struct {
	store    Store
	ticker   Ticker
	alarm    Alarm
	playback Playback

	// persistMu orders store writes of settings and mute with their
	// in-memory updates. It is taken before mu.
	persistMu sync.Mutex

	mu       sync.Mutex
	config   model.SessionConfig
	state    model.SessionState
	alarmSt  model.AlarmState
	runGen   uint64
	alarmGen uint64
	subs     map[int]chan model.Snapshot
	nextSub  int
}

// NewSessionController restores settings, the completed-work counter and the
// mute flag from store and starts in work mode, not running. playback may be
// nil when no playback service is configured.
func NewSessionController(ctx context.Context, store Store, ticker Ticker, alarm Alarm, playback Playback) *SessionController {
	defaults := model.DefaultSessionConfig()
	cfg := model.SessionConfig{
		WorkMinutes:       loadInt(ctx, store, model.KeyWorkMinutes, defaults.WorkMinutes),
		ShortBreakMinutes: loadInt(ctx, store, model.KeyShortBreakMinutes, defaults.ShortBreakMinutes),
		LongBreakMinutes:  loadInt(ctx, store, model.KeyLongBreakMinutes, defaults.LongBreakMinutes),
	}.Clamped()

	count := loadInt(ctx, store, model.KeyCompletedWorkCount, 0)
	if count < 0 {
		count = 0
	}

	return &SessionController{
		store:    store,
		ticker:   ticker,
		alarm:    alarm,
		playback: playback,
		config:   cfg,
		state: model.SessionState{
			Mode:               model.ModeWork,
			RemainingMinutes:   cfg.WorkMinutes,
			CompletedWorkCount: count,
		},
		alarmSt: model.AlarmState{
			IsMuted: loadBool(ctx, store, model.KeyMuted, false),
		},
		subs: make(map[int]chan model.Snapshot),
	}
}

func (c *SessionController) Snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that always holds the latest snapshot after a
// change. Slow readers miss intermediate snapshots, never the last one.
func (c *SessionController) Subscribe() (<-chan model.Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan model.Snapshot, 1)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (c *SessionController) Start() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsRunning {
		c.state.IsRunning = true
		c.runGen++
		gen := c.runGen
		c.ticker.Start(func() { c.tick(gen) })
		c.publishLocked()
	}
	return c.snapshotLocked()
}

func (c *SessionController) Pause() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsRunning {
		c.stopLocked()
		c.publishLocked()
	}
	return c.snapshotLocked()
}

func (c *SessionController) Toggle() model.Snapshot {
	c.mu.Lock()
	running := c.state.IsRunning
	c.mu.Unlock()

	if running {
		return c.Pause()
	}
	return c.Start()
}

// ResetTimer stops the countdown and reloads the full duration of the
// current mode.
func (c *SessionController) ResetTimer() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.publishLocked()
	return c.snapshotLocked()
}

func (c *SessionController) SwitchMode(mode model.Mode) (model.Snapshot, error) {
	if !mode.Valid() {
		return c.Snapshot(), ErrInvalidMode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Mode = mode
	c.resetLocked()
	c.publishLocked()
	return c.snapshotLocked(), nil
}

func (c *SessionController) SetWorkMinutes(ctx context.Context, minutes int) (model.Snapshot, error) {
	return c.UpdateSettings(ctx, SettingsUpdate{WorkMinutes: &minutes})
}

func (c *SessionController) SetShortBreakMinutes(ctx context.Context, minutes int) (model.Snapshot, error) {
	return c.UpdateSettings(ctx, SettingsUpdate{ShortBreakMinutes: &minutes})
}

func (c *SessionController) SetLongBreakMinutes(ctx context.Context, minutes int) (model.Snapshot, error) {
	return c.UpdateSettings(ctx, SettingsUpdate{LongBreakMinutes: &minutes})
}

// UpdateSettings clamps and stores the given durations. An edited duration
// that belongs to the active mode resynchronises the countdown, even while
// running.
func (c *SessionController) UpdateSettings(ctx context.Context, update SettingsUpdate) (model.Snapshot, error) {
	type write struct {
		key   string
		value int
	}
	var writes []write

	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	if update.WorkMinutes != nil {
		v := model.Clamp(*update.WorkMinutes, model.MinMinutes, model.MaxWorkMinutes)
		c.config.WorkMinutes = v
		c.resyncLocked(model.ModeWork)
		writes = append(writes, write{model.KeyWorkMinutes, v})
	}
	if update.ShortBreakMinutes != nil {
		v := model.Clamp(*update.ShortBreakMinutes, model.MinMinutes, model.MaxShortBreakMinutes)
		c.config.ShortBreakMinutes = v
		c.resyncLocked(model.ModeShortBreak)
		writes = append(writes, write{model.KeyShortBreakMinutes, v})
	}
	if update.LongBreakMinutes != nil {
		v := model.Clamp(*update.LongBreakMinutes, model.MinMinutes, model.MaxLongBreakMinutes)
		c.config.LongBreakMinutes = v
		c.resyncLocked(model.ModeLongBreak)
		writes = append(writes, write{model.KeyLongBreakMinutes, v})
	}
	if len(writes) > 0 {
		c.publishLocked()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	for _, w := range writes {
		if err := saveInt(ctx, c.store, w.key, w.value); err != nil {
			return snap, fmt.Errorf("save %s: %w", w.key, err)
		}
	}
	return snap, nil
}

// ResetSettings drops the stored durations and goes back to the defaults.
func (c *SessionController) ResetSettings(ctx context.Context) (model.Snapshot, error) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	c.config = model.DefaultSessionConfig()
	c.resyncLocked(c.state.Mode)
	c.publishLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	for _, key := range []string{model.KeyWorkMinutes, model.KeyShortBreakMinutes, model.KeyLongBreakMinutes} {
		if err := c.store.Remove(ctx, key); err != nil {
			return snap, fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return snap, nil
}

// SetMuted only affects whether later completions raise the alarm.
func (c *SessionController) SetMuted(ctx context.Context, muted bool) (model.Snapshot, error) {
	return c.updateMuted(ctx, func(bool) bool { return muted })
}

func (c *SessionController) ToggleMute(ctx context.Context) (model.Snapshot, error) {
	return c.updateMuted(ctx, func(muted bool) bool { return !muted })
}

func (c *SessionController) updateMuted(ctx context.Context, next func(bool) bool) (model.Snapshot, error) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	muted := next(c.alarmSt.IsMuted)
	c.alarmSt.IsMuted = muted
	c.publishLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err := saveBool(ctx, c.store, model.KeyMuted, muted); err != nil {
		return snap, fmt.Errorf("save %s: %w", model.KeyMuted, err)
	}
	return snap, nil
}

// StopAlarm acknowledges the alarm and resets the timer for the current mode.
// Playback is not resumed; see ResumePlayback.
func (c *SessionController) StopAlarm() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alarmSt.IsAlarmActive {
		c.alarm.Stop()
	}
	c.alarmSt.IsAlarmActive = false
	c.alarmGen++
	c.resetLocked()
	c.publishLocked()
	return c.snapshotLocked()
}

// ResumePlayback resumes external playback if it was playing when the last
// completion paused it. It reports whether a resume was issued.
func (c *SessionController) ResumePlayback(ctx context.Context) bool {
	if c.playback == nil {
		return false
	}
	return c.playback.ResumeAfterAlarm(ctx)
}

// Close stops the tick source and the alarm and closes every subscription.
func (c *SessionController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if c.alarmSt.IsAlarmActive {
		c.alarm.Stop()
		c.alarmSt.IsAlarmActive = false
	}
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *SessionController) tick(gen uint64) {
	c.mu.Lock()
	if !c.state.IsRunning || gen != c.runGen {
		c.mu.Unlock()
		return
	}

	switch {
	case c.state.RemainingSeconds > 0:
		c.state.RemainingSeconds--
	case c.state.RemainingMinutes > 0:
		c.state.RemainingMinutes--
		c.state.RemainingSeconds = 59
	}

	if c.state.RemainingMinutes > 0 || c.state.RemainingSeconds > 0 {
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	fromWork := c.completeLocked()
	completedGen := c.runGen
	count := c.state.CompletedWorkCount
	c.publishLocked()
	c.mu.Unlock()

	if fromWork {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := saveInt(ctx, c.store, model.KeyCompletedWorkCount, count); err != nil {
			log.Printf("session: save completed work count: %v", err)
		}
		cancel()
	}
	c.afterCompletion(completedGen)
}

// completeLocked applies the completion transition and reports whether a
// work interval was completed.
func (c *SessionController) completeLocked() bool {
	c.stopLocked()

	fromWork := c.state.Mode == model.ModeWork
	if fromWork {
		c.state.CompletedWorkCount++
		if c.state.CompletedWorkCount%model.LongBreakEvery == 0 {
			c.state.Mode = model.ModeLongBreak
		} else {
			c.state.Mode = model.ModeShortBreak
		}
	} else {
		c.state.Mode = model.ModeWork
	}
	c.state.RemainingMinutes = c.config.MinutesFor(c.state.Mode)
	c.state.RemainingSeconds = 0

	log.Printf("session: completed, next mode %s (%d work intervals done)", c.state.Mode, c.state.CompletedWorkCount)
	return fromWork
}

// afterCompletion pauses external playback and only then raises the alarm,
// so the playback memory is settled before anyone can acknowledge it. The
// alarm belongs to the completion at gen; if the session was started, reset
// or switched while the pause was in flight, it is dropped.
func (c *SessionController) afterCompletion(gen uint64) {
	if c.playback != nil {
		ctx, cancel := context.WithTimeout(context.Background(), playbackTimeout)
		c.playback.PauseForAlarm(ctx)
		cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alarmSt.IsMuted || c.state.IsRunning || gen != c.runGen {
		return
	}
	c.alarmSt.IsAlarmActive = true
	c.alarmGen++
	alarmGen := c.alarmGen
	c.alarm.Play(func() { c.alarmFinished(alarmGen) })
	c.publishLocked()
}

func (c *SessionController) alarmFinished(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.alarmGen || !c.alarmSt.IsAlarmActive {
		return
	}
	c.alarmSt.IsAlarmActive = false
	c.publishLocked()
}

// stopLocked halts the countdown. Bumping runGen discards any tick that was
// already scheduled.
func (c *SessionController) stopLocked() {
	c.state.IsRunning = false
	c.runGen++
	c.ticker.Stop()
}

func (c *SessionController) resetLocked() {
	c.stopLocked()
	c.state.RemainingMinutes = c.config.MinutesFor(c.state.Mode)
	c.state.RemainingSeconds = 0
}

func (c *SessionController) resyncLocked(mode model.Mode) {
	if c.state.Mode != mode {
		return
	}
	c.state.RemainingMinutes = c.config.MinutesFor(mode)
	c.state.RemainingSeconds = 0
}

func (c *SessionController) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		SessionState: c.state,
		AlarmState:   c.alarmSt,
		Config:       c.config,
	}
}

func (c *SessionController) publishLocked() {
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
