// Package spotify is the playback adapter for the Spotify Web API. Every call
// is authenticated with the bearer credential handed out by a TokenSource and
// failures are reported as errors, never panics.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"jtimer/backend/internal/model"
)

const (
	DefaultAPIURL       = "https://api.spotify.com/v1"
	DefaultPollInterval = 3 * time.Second
	DefaultSettleDelay  = 500 * time.Millisecond
	toggleSettleDelay   = 300 * time.Millisecond
)

// ErrUnauthenticated is returned without issuing a request when no credential
// is available.
var ErrUnauthenticated = errors.New("spotify: not authenticated")

// StatusError is returned when the service answers with anything but 200/204.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spotify %s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

// TokenSource supplies the current bearer credential.
type TokenSource interface {
	CurrentToken() (string, bool)
}

type PlayerConfig struct {
	APIURL       string
	HTTPClient   *http.Client
	PollInterval time.Duration
	SettleDelay  time.Duration
}

type Player struct {
	tokens       TokenSource
	apiURL       string
	httpClient   *http.Client
	pollInterval time.Duration
	settleDelay  time.Duration

	mu                    sync.Mutex
	isPlaying             bool
	track                 *model.Track
	devices               []model.Device
	wasPlayingBeforePause bool
	// confirmed counts successful pause and resume calls. A poll that was
	// issued before the latest one must not overwrite its isPlaying.
	confirmed uint64
}

func NewPlayer(tokens TokenSource, cfg PlayerConfig) *Player {
	p := &Player{
		tokens:       tokens,
		apiURL:       cfg.APIURL,
		httpClient:   cfg.HTTPClient,
		pollInterval: cfg.PollInterval,
		settleDelay:  cfg.SettleDelay,
	}
	if p.apiURL == "" {
		p.apiURL = DefaultAPIURL
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if p.pollInterval <= 0 {
		p.pollInterval = DefaultPollInterval
	}
	if p.settleDelay <= 0 {
		p.settleDelay = DefaultSettleDelay
	}
	return p
}

// IsPlaying reports the cached playing flag.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isPlaying
}

// State returns the cached playback view without contacting the service.
func (p *Player) State() model.Playback {
	p.mu.Lock()
	defer p.mu.Unlock()
	view := model.Playback{IsPlaying: p.isPlaying}
	if p.track != nil {
		track := *p.track
		view.Track = &track
	}
	if len(p.devices) > 0 {
		view.Devices = append([]model.Device(nil), p.devices...)
	}
	return view
}

// WasPlayingBeforePause reports the playback memory of the last pause-for-alarm.
func (p *Player) WasPlayingBeforePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wasPlayingBeforePause
}

func (p *Player) Pause(ctx context.Context) error {
	if err := p.send(ctx, "pause", http.MethodPut, "/me/player/pause", nil); err != nil {
		return err
	}
	p.setPlaying(false)
	return nil
}

func (p *Player) Resume(ctx context.Context) error {
	if err := p.send(ctx, "play", http.MethodPut, "/me/player/play", nil); err != nil {
		return err
	}
	p.setPlaying(true)
	return nil
}

// Toggle pauses or resumes depending on the cached flag.
func (p *Player) Toggle(ctx context.Context) error {
	var err error
	if p.IsPlaying() {
		err = p.Pause(ctx)
	} else {
		err = p.Resume(ctx)
	}
	if err != nil {
		return err
	}
	p.scheduleRefresh(toggleSettleDelay)
	return nil
}

func (p *Player) SkipNext(ctx context.Context) error {
	if err := p.send(ctx, "next", http.MethodPost, "/me/player/next", nil); err != nil {
		return err
	}
	p.scheduleRefresh(p.settleDelay)
	return nil
}

func (p *Player) SkipPrevious(ctx context.Context) error {
	if err := p.send(ctx, "previous", http.MethodPost, "/me/player/previous", nil); err != nil {
		return err
	}
	p.scheduleRefresh(p.settleDelay)
	return nil
}

func (p *Player) TransferTo(ctx context.Context, deviceID string) error {
	body := transferRequest{DeviceIDs: []string{deviceID}, Play: true}
	if err := p.send(ctx, "transfer", http.MethodPut, "/me/player", body); err != nil {
		return err
	}
	p.scheduleRefresh(p.settleDelay)
	return nil
}

func (p *Player) ListDevices(ctx context.Context) ([]model.Device, error) {
	resp, err := p.do(ctx, "devices", http.MethodGet, "/me/player/devices", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload devicesResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			log.Printf("spotify devices: decode response: %v", err)
			return nil, fmt.Errorf("decode devices: %w", err)
		}
	}

	devices := make([]model.Device, 0, len(payload.Devices))
	for _, d := range payload.Devices {
		devices = append(devices, model.Device{
			ID:            d.ID,
			Name:          d.Name,
			Type:          d.Type,
			IsActive:      d.IsActive,
			VolumePercent: d.VolumePercent,
		})
	}

	p.mu.Lock()
	p.devices = devices
	p.mu.Unlock()
	return devices, nil
}

// CurrentlyPlaying refreshes and returns the playback view. A 204 answer means
// nothing is playing.
func (p *Player) CurrentlyPlaying(ctx context.Context) (model.Playback, error) {
	p.mu.Lock()
	seq := p.confirmed
	p.mu.Unlock()

	resp, err := p.do(ctx, "currently-playing", http.MethodGet, "/me/player/currently-playing", nil)
	if err != nil {
		return p.State(), err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		p.apply(seq, nil, false)
		return p.State(), nil
	}

	var payload currentlyPlayingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("spotify currently-playing: decode response: %v", err)
		return p.State(), fmt.Errorf("decode currently playing: %w", err)
	}

	p.apply(seq, payload.Item.toModel(), payload.IsPlaying)
	return p.State(), nil
}

// apply stores a polled view. The playing flag is kept when a pause or resume
// was confirmed after the poll was issued.
func (p *Player) apply(seq uint64, track *model.Track, playing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.track = track
	if seq == p.confirmed {
		p.isPlaying = playing
	}
}

// PauseForAlarm remembers whether music was playing and pauses it if so. It
// returns once the pause has succeeded or definitively failed.
func (p *Player) PauseForAlarm(ctx context.Context) bool {
	wasPlaying := p.IsPlaying()

	p.mu.Lock()
	p.wasPlayingBeforePause = wasPlaying
	p.mu.Unlock()

	if !wasPlaying {
		return false
	}
	if err := p.Pause(ctx); err != nil {
		log.Printf("spotify pause for alarm: %v", err)
	}
	return true
}

// ResumeAfterAlarm resumes playback only if the preceding PauseForAlarm found
// music playing. The memory is consumed, so a second call is a no-op.
func (p *Player) ResumeAfterAlarm(ctx context.Context) bool {
	p.mu.Lock()
	owed := p.wasPlayingBeforePause
	p.wasPlayingBeforePause = false
	p.mu.Unlock()

	if !owed {
		return false
	}
	if err := p.Resume(ctx); err != nil {
		log.Printf("spotify resume after alarm: %v", err)
	}
	return true
}

// Run polls currently-playing until ctx is done. Ticks without a credential
// are skipped, so polling stops and resumes with the credential.
func (p *Player) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Player) poll(ctx context.Context) {
	if _, ok := p.tokens.CurrentToken(); !ok {
		return
	}
	_, _ = p.CurrentlyPlaying(ctx)
}

func (p *Player) scheduleRefresh(delay time.Duration) {
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.httpClient.Timeout+time.Second)
		defer cancel()
		_, _ = p.CurrentlyPlaying(ctx)
	})
}

func (p *Player) setPlaying(playing bool) {
	p.mu.Lock()
	p.isPlaying = playing
	p.confirmed++
	p.mu.Unlock()
}

// send issues a request whose only interesting outcome is its status.
func (p *Player) send(ctx context.Context, op, method, path string, body interface{}) error {
	resp, err := p.do(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// do performs an authenticated request and converts every failure to an
// error. On success the caller owns resp.Body.
func (p *Player) do(ctx context.Context, op, method, path string, body interface{}) (*http.Response, error) {
	token, ok := p.tokens.CurrentToken()
	if !ok {
		return nil, ErrUnauthenticated
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.apiURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("spotify %s: %v", op, err)
		return nil, fmt.Errorf("spotify %s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		statusErr := &StatusError{Op: op, Status: resp.StatusCode, Body: string(raw)}
		log.Printf("%v", statusErr)
		return nil, statusErr
	}
	return resp, nil
}
