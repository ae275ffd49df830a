package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validConf = `
[credentials.spotify]
client_id = "cid"
client_secret = "csecret"
redirect_uri = "http://localhost:9999/cb"

[cache]
dir = "/tmp/kwx-cache"
max_age_hours = 12

[retry]
max_attempts = 7
base_delay_ms = 250

[[targets]]
name = "Instrumentals"
artist_id = "artist1"
playlist_id = "playlist1"
keyword = "Instrumental"

[[targets]]
name = "Remixes"
artist_id = "artist2"
playlist_id = "playlist2"
keyword = "Remix"
`

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Valid Config", func(t *testing.T) {
		config, err := LoadConfig(writeConf(t, validConf))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.Credentials.Spotify.ClientID != "cid" {
			t.Errorf("unexpected client_id: %s", config.Credentials.Spotify.ClientID)
		}
		if config.Cache.Dir != "/tmp/kwx-cache" {
			t.Errorf("unexpected cache dir: %s", config.Cache.Dir)
		}
		if config.Cache.MaxAge() != 12*time.Hour {
			t.Errorf("unexpected max age: %v", config.Cache.MaxAge())
		}
		if config.Retry.MaxAttempts != 7 {
			t.Errorf("unexpected max attempts: %d", config.Retry.MaxAttempts)
		}
		if config.Retry.BaseDelay() != 250*time.Millisecond {
			t.Errorf("unexpected base delay: %v", config.Retry.BaseDelay())
		}

		if len(config.Targets) != 2 {
			t.Fatalf("expected 2 targets, got %d", len(config.Targets))
		}
		if config.Targets[1].Keyword != "Remix" {
			t.Errorf("unexpected keyword: %s", config.Targets[1].Keyword)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("Malformed TOML", func(t *testing.T) {
		_, err := LoadConfig(writeConf(t, "[credentials\nboom"))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Target Missing Playlist ID", func(t *testing.T) {
		conf := `
[[targets]]
name = "Broken"
artist_id = "artist1"
keyword = "x"
`
		_, err := LoadConfig(writeConf(t, conf))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Defaults Applied", func(t *testing.T) {
		config, err := LoadConfig(writeConf(t, ""))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Cache.Dir != ".track_cache" {
			t.Errorf("unexpected default cache dir: %s", config.Cache.Dir)
		}
		if config.Cache.MaxAge() != 0 {
			t.Errorf("expected no default expiry, got %v", config.Cache.MaxAge())
		}
		if config.Retry.MaxAttempts != 4 {
			t.Errorf("unexpected default max attempts: %d", config.Retry.MaxAttempts)
		}
	})

	t.Run("Environment Overrides Credentials", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env-cid")

		config, err := LoadConfig(writeConf(t, validConf))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Credentials.Spotify.ClientID != "env-cid" {
			t.Errorf("expected env override, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "csecret" {
			t.Errorf("expected file value for secret, got %s", config.Credentials.Spotify.ClientSecret)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.Cache.Dir != ".track_cache" {
		t.Errorf("unexpected cache dir: %s", config.Cache.Dir)
	}
	if len(config.Targets) != 0 {
		t.Errorf("default config should have no targets, got %d", len(config.Targets))
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("Creates File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected file to exist: %v", err)
		}
	})

	t.Run("Refuses To Overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error for existing file")
		}
	})
}
