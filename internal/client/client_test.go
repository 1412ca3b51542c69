package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "jtimer/backend/internal/errors"
	"jtimer/backend/internal/model"
)

type recordedRequest struct {
	method string
	path   string
	body   string
}

func newTestServer(t *testing.T, status int, response string) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, body: string(body)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)
	return New(server.URL+"/", server.Client()), &requests
}

func TestSessionActionDecodesSnapshot(t *testing.T) {
	c, requests := newTestServer(t, http.StatusOK,
		`{"state":{"mode":"shortBreak","remainingMinutes":4,"remainingSeconds":30,"isRunning":true,"completedWorkCount":3,"isAlarmActive":false,"isMuted":true,"config":{"workMinutes":25,"shortBreakMinutes":5,"longBreakMinutes":15}}}`)

	snap, err := c.SessionAction(context.Background(), "start")
	if err != nil {
		t.Fatalf("session action: %v", err)
	}
	if snap.Mode != model.ModeShortBreak || snap.RemainingMinutes != 4 || snap.RemainingSeconds != 30 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if !snap.IsRunning || !snap.IsMuted || snap.CompletedWorkCount != 3 || snap.Config.ShortBreakMinutes != 5 {
		t.Fatalf("unexpected flags %+v", snap)
	}
	if got := (*requests)[0]; got.method != http.MethodPost || got.path != "/api/session/start" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestUpdateSettingsOmitsUnsetFields(t *testing.T) {
	c, requests := newTestServer(t, http.StatusOK, `{"state":{}}`)

	work := 30
	if _, err := c.UpdateSettings(context.Background(), SettingsUpdate{WorkMinutes: &work}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	got := (*requests)[0]
	if got.method != http.MethodPut || got.path != "/api/session/settings" {
		t.Fatalf("unexpected request %+v", got)
	}
	var body map[string]int
	if err := json.Unmarshal([]byte(got.body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 1 || body["workMinutes"] != 30 {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestSetMutedWithoutValueSendsEmptyBody(t *testing.T) {
	c, requests := newTestServer(t, http.StatusOK, `{"state":{"isMuted":true}}`)

	snap, err := c.SetMuted(context.Background(), nil)
	if err != nil {
		t.Fatalf("set muted: %v", err)
	}
	if !snap.IsMuted {
		t.Fatal("expected muted snapshot")
	}
	if body := (*requests)[0].body; body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}
}

func TestDeleteTaskNoContent(t *testing.T) {
	c, requests := newTestServer(t, http.StatusNoContent, "")

	if err := c.DeleteTask(context.Background(), "a/b"); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if got := (*requests)[0]; got.method != http.MethodDelete || got.path != "/api/tasks/a/b" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusUnauthorized,
		`{"error":{"code":"unauthenticated","message":"not authenticated with the playback service"}}`)

	_, err := c.PlaybackCommand(context.Background(), "pause")
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Code != "unauthenticated" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestUnexpectedStatusWithoutEnvelope(t *testing.T) {
	c, _ := newTestServer(t, http.StatusBadGateway, "upstream down")

	_, err := c.Tasks(context.Background())
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != "unexpected_status" || apiErr.Message != "upstream down" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}
