package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const snapshotJSON = `{"state":{"mode":"work","remainingMinutes":24,"remainingSeconds":5,"isRunning":true,"completedWorkCount":2,"isAlarmActive":false,"isMuted":true,"config":{"workMinutes":25,"shortBreakMinutes":5,"longBreakMinutes":15}}}`

type captured struct {
	method string
	path   string
	body   string
}

func runCLI(t *testing.T, response string, args ...string) (string, []captured, error) {
	t.Helper()
	var requests []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, captured{method: r.Method, path: r.URL.Path, body: string(body)})
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, response)
	}))
	defer server.Close()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", server.URL}, args...))
	err := cmd.Execute()
	return out.String(), requests, err
}

func TestRootCommandName(t *testing.T) {
	if use := newRootCmd().Use; use != "jtimerctl" {
		t.Fatalf("expected root command name jtimerctl, got %q", use)
	}
}

func TestStatusPrintsSummary(t *testing.T) {
	out, requests, err := runCLI(t, snapshotJSON, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if want := "work 24:05 running, 2 work intervals done [muted]\n"; out != want {
		t.Fatalf("unexpected output %q", out)
	}
	if requests[0].method != http.MethodGet || requests[0].path != "/api/session" {
		t.Fatalf("unexpected request %+v", requests[0])
	}
}

func TestStartWithJSONOutput(t *testing.T) {
	out, requests, err := runCLI(t, snapshotJSON, "--json", "start")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if requests[0].method != http.MethodPost || requests[0].path != "/api/session/start" {
		t.Fatalf("unexpected request %+v", requests[0])
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("expected JSON output, got %q", out)
	}
	if decoded["mode"] != "work" {
		t.Fatalf("unexpected JSON output %v", decoded)
	}
}

func TestSettingsSendsOnlyChangedFlags(t *testing.T) {
	out, requests, err := runCLI(t, snapshotJSON, "settings", "--short-break", "7")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if requests[0].method != http.MethodPut || requests[0].path != "/api/session/settings" {
		t.Fatalf("unexpected request %+v", requests[0])
	}
	if requests[0].body != `{"shortBreakMinutes":7}` {
		t.Fatalf("unexpected body %s", requests[0].body)
	}
	if !strings.HasPrefix(out, "work 25m") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestModeRejectsUnknownMode(t *testing.T) {
	_, requests, err := runCLI(t, snapshotJSON, "mode", "nap")
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if len(requests) != 0 {
		t.Fatal("no request may be sent for an unknown mode")
	}
}

func TestMuteArguments(t *testing.T) {
	_, requests, err := runCLI(t, snapshotJSON, "mute", "off")
	if err != nil {
		t.Fatalf("mute off: %v", err)
	}
	if requests[0].body != `{"muted":false}` {
		t.Fatalf("unexpected body %s", requests[0].body)
	}

	_, requests, err = runCLI(t, snapshotJSON, "mute")
	if err != nil {
		t.Fatalf("mute toggle: %v", err)
	}
	if requests[0].body != "" {
		t.Fatalf("toggle must send no body, got %s", requests[0].body)
	}
}

func TestTaskAddJoinsArguments(t *testing.T) {
	out, requests, err := runCLI(t, `{"task":{"id":"t1","text":"write report","completed":false}}`, "task", "add", "write", "report")
	if err != nil {
		t.Fatalf("task add: %v", err)
	}
	if requests[0].body != `{"text":"write report"}` {
		t.Fatalf("unexpected body %s", requests[0].body)
	}
	if out != "added t1  write report\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPlaybackErrorIsReported(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":"unauthenticated","message":"not authenticated with the playback service"}}`)
	}))
	defer server.Close()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--server", server.URL, "playback", "next"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "not authenticated") {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected one request, got %d", requests)
	}
}
