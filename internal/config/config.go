package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAccountsURL = "https://accounts.spotify.com"
	DefaultAPIURL      = "https://api.spotify.com/v1"
)

type Config struct {
	Port          string   `toml:"port" yaml:"port"`
	DBPath        string   `toml:"db-path" yaml:"db_path"`
	MigrationsDir string   `toml:"migrations-dir" yaml:"migrations_dir"`
	CORSOrigins   []string `toml:"cors-origins" yaml:"cors_origins"`
	ClientURL     string   `toml:"client-url" yaml:"client_url"`
	StateSecret   string   `toml:"state-secret" yaml:"state_secret"`
	AlarmRings    int      `toml:"alarm-rings" yaml:"alarm_rings"`
	Spotify       Spotify  `toml:"spotify" yaml:"spotify"`
}

// Spotify holds the credentials and endpoints of the playback service.
type Spotify struct {
	ClientID     string `toml:"client-id" yaml:"client_id"`
	ClientSecret string `toml:"client-secret" yaml:"client_secret"`
	RedirectURI  string `toml:"redirect-uri" yaml:"redirect_uri"`
	AccountsURL  string `toml:"accounts-url" yaml:"accounts_url"`
	APIURL       string `toml:"api-url" yaml:"api_url"`
}

func Defaults() Config {
	return Config{
		Port:          "5001",
		DBPath:        "./data/jtimer.db",
		MigrationsDir: "",
		CORSOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		ClientURL:     "http://localhost:3000",
		StateSecret:   "change-this-secret",
		AlarmRings:    10,
		Spotify: Spotify{
			RedirectURI: "http://127.0.0.1:5001/auth/callback",
			AccountsURL: DefaultAccountsURL,
			APIURL:      DefaultAPIURL,
		},
	}
}

// Load builds the configuration from defaults, the optional file named by
// JTIMER_CONFIG, and the environment, in that order of precedence.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("JTIMER_CONFIG"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile decodes a TOML or YAML file over cfg. Keys missing from the file
// keep their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode config file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode config file %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", cfg.MigrationsDir)
	cfg.ClientURL = strings.TrimRight(getEnv("CLIENT_URL", cfg.ClientURL), "/")
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", withOrigin(cfg.CORSOrigins, cfg.ClientURL))
	cfg.StateSecret = getEnv("STATE_SECRET", cfg.StateSecret)
	cfg.AlarmRings = getEnvInt("ALARM_RINGS", cfg.AlarmRings)
	cfg.Spotify.ClientID = getEnv("SPOTIFY_CLIENT_ID", cfg.Spotify.ClientID)
	cfg.Spotify.ClientSecret = getEnv("SPOTIFY_CLIENT_SECRET", cfg.Spotify.ClientSecret)
	cfg.Spotify.RedirectURI = getEnv("SPOTIFY_REDIRECT_URI", cfg.Spotify.RedirectURI)
	cfg.Spotify.AccountsURL = strings.TrimRight(getEnv("SPOTIFY_ACCOUNTS_URL", cfg.Spotify.AccountsURL), "/")
	cfg.Spotify.APIURL = strings.TrimRight(getEnv("SPOTIFY_API_URL", cfg.Spotify.APIURL), "/")
}

func withOrigin(origins []string, origin string) []string {
	if origin == "" {
		return origins
	}
	for _, o := range origins {
		if o == origin {
			return origins
		}
	}
	return append([]string{origin}, origins...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
