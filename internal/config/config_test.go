package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"JTIMER_CONFIG", "PORT", "DB_PATH", "MIGRATIONS_DIR", "CLIENT_URL", "CORS_ORIGINS",
		"STATE_SECRET", "ALARM_RINGS", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET",
		"SPOTIFY_REDIRECT_URI", "SPOTIFY_ACCOUNTS_URL", "SPOTIFY_API_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "5001" {
		t.Fatalf("expected port 5001, got %s", cfg.Port)
	}
	if cfg.Spotify.AccountsURL != DefaultAccountsURL {
		t.Fatalf("unexpected accounts url %s", cfg.Spotify.AccountsURL)
	}
	if cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoadFilePrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "jtimer.toml")
	content := `port = "7000"
client-url = "https://timer.example.com/"

[spotify]
client-id = "file-id"
client-secret = "file-secret"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JTIMER_CONFIG", path)
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Fatalf("expected file port 7000, got %s", cfg.Port)
	}
	if cfg.Spotify.ClientID != "env-id" {
		t.Fatalf("expected env to win for client id, got %s", cfg.Spotify.ClientID)
	}
	if cfg.Spotify.ClientSecret != "file-secret" {
		t.Fatalf("expected file client secret, got %s", cfg.Spotify.ClientSecret)
	}
	if cfg.ClientURL != "https://timer.example.com" {
		t.Fatalf("expected trimmed client url, got %s", cfg.ClientURL)
	}
	if cfg.CORSOrigins[0] != "https://timer.example.com" {
		t.Fatalf("expected client url in cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jtimer.yaml")
	content := "alarm_rings: 3\nspotify:\n  api_url: http://127.0.0.1:9999/v1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Defaults()
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.AlarmRings != 3 {
		t.Fatalf("expected 3 alarm rings, got %d", cfg.AlarmRings)
	}
	if cfg.Spotify.APIURL != "http://127.0.0.1:9999/v1" {
		t.Fatalf("unexpected api url %s", cfg.Spotify.APIURL)
	}
	if cfg.Port != "5001" {
		t.Fatalf("expected default port to survive, got %s", cfg.Port)
	}
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jtimer.ini")
	if err := os.WriteFile(path, []byte("port=1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := Defaults()
	if err := LoadFile(path, &cfg); err == nil {
		t.Fatal("expected error for .ini file")
	}
}
