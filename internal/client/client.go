// Package client talks to the control API of a running jtimer server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "jtimer/backend/internal/errors"
	"jtimer/backend/internal/model"
)

const DefaultServerURL = "http://127.0.0.1:5001"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// SettingsUpdate mirrors the partial settings body; nil fields are omitted.
type SettingsUpdate struct {
	WorkMinutes       *int `json:"workMinutes,omitempty"`
	ShortBreakMinutes *int `json:"shortBreakMinutes,omitempty"`
	LongBreakMinutes  *int `json:"longBreakMinutes,omitempty"`
}

type TaskList struct {
	Tasks []model.Task    `json:"tasks"`
	Stats model.TaskStats `json:"stats"`
}

type sessionEnvelope struct {
	State model.Snapshot `json:"state"`
}

type taskEnvelope struct {
	Task model.Task `json:"task"`
}

type playbackEnvelope struct {
	Playback model.Playback `json:"playback"`
}

type devicesEnvelope struct {
	Devices []model.Device `json:"devices"`
}

type errorEnvelope struct {
	Error *apperrors.APIError `json:"error"`
}

func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) Session(ctx context.Context) (model.Snapshot, error) {
	var resp sessionEnvelope
	err := c.do(ctx, http.MethodGet, "/api/session", nil, &resp)
	return resp.State, err
}

// SessionAction runs one of start, pause, toggle or reset.
func (c *Client) SessionAction(ctx context.Context, action string) (model.Snapshot, error) {
	return c.session(ctx, http.MethodPost, "/api/session/"+url.PathEscape(action), nil)
}

func (c *Client) SwitchMode(ctx context.Context, mode model.Mode) (model.Snapshot, error) {
	return c.session(ctx, http.MethodPost, "/api/session/mode", map[string]model.Mode{"mode": mode})
}

func (c *Client) UpdateSettings(ctx context.Context, update SettingsUpdate) (model.Snapshot, error) {
	return c.session(ctx, http.MethodPut, "/api/session/settings", update)
}

func (c *Client) ResetSettings(ctx context.Context) (model.Snapshot, error) {
	return c.session(ctx, http.MethodPost, "/api/session/settings/reset", nil)
}

// SetMuted sets the mute flag, or toggles it when muted is nil.
func (c *Client) SetMuted(ctx context.Context, muted *bool) (model.Snapshot, error) {
	var body interface{}
	if muted != nil {
		body = map[string]bool{"muted": *muted}
	}
	return c.session(ctx, http.MethodPost, "/api/session/mute", body)
}

func (c *Client) StopAlarm(ctx context.Context) (model.Snapshot, error) {
	return c.session(ctx, http.MethodPost, "/api/session/alarm/stop", nil)
}

func (c *Client) ResumePlayback(ctx context.Context) (bool, error) {
	var resp struct {
		Resumed bool `json:"resumed"`
	}
	err := c.do(ctx, http.MethodPost, "/api/session/playback/resume", nil, &resp)
	return resp.Resumed, err
}

func (c *Client) Tasks(ctx context.Context) (TaskList, error) {
	var resp TaskList
	err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &resp)
	return resp, err
}

func (c *Client) AddTask(ctx context.Context, text string) (model.Task, error) {
	var resp taskEnvelope
	err := c.do(ctx, http.MethodPost, "/api/tasks", map[string]string{"text": text}, &resp)
	return resp.Task, err
}

func (c *Client) ToggleTask(ctx context.Context, id string) (model.Task, error) {
	var resp taskEnvelope
	err := c.do(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(id)+"/toggle", nil, &resp)
	return resp.Task, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Playback(ctx context.Context) (model.Playback, error) {
	var resp playbackEnvelope
	err := c.do(ctx, http.MethodGet, "/api/playback", nil, &resp)
	return resp.Playback, err
}

// PlaybackCommand runs one of play, pause, toggle, next or previous.
func (c *Client) PlaybackCommand(ctx context.Context, command string) (model.Playback, error) {
	var resp playbackEnvelope
	err := c.do(ctx, http.MethodPost, "/api/playback/"+url.PathEscape(command), nil, &resp)
	return resp.Playback, err
}

func (c *Client) Devices(ctx context.Context) ([]model.Device, error) {
	var resp devicesEnvelope
	err := c.do(ctx, http.MethodGet, "/api/playback/devices", nil, &resp)
	return resp.Devices, err
}

func (c *Client) TransferTo(ctx context.Context, deviceID string) (model.Playback, error) {
	var resp playbackEnvelope
	err := c.do(ctx, http.MethodPut, "/api/playback/device", map[string]string{"deviceId": deviceID}, &resp)
	return resp.Playback, err
}

func (c *Client) session(ctx context.Context, method, path string, body interface{}) (model.Snapshot, error) {
	var resp sessionEnvelope
	err := c.do(ctx, method, path, body, &resp)
	return resp.State, err
}

// do sends body as JSON and decodes a 2xx answer into out. Error envelopes
// come back as *apperrors.APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
			envelope.Error.Status = resp.StatusCode
			return envelope.Error
		}
		return apperrors.New(resp.StatusCode, "unexpected_status", strings.TrimSpace(string(raw)))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
