package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/soracane/kwx/internal/models"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Cache       CacheConfig       `toml:"cache"`
	Retry       RetryConfig       `toml:"retry"`
	Targets     []models.Target   `toml:"targets"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// CacheConfig contains track cache settings.
type CacheConfig struct {
	Dir string `toml:"dir"`
	// MaxAgeHours bounds how long a cached catalog is trusted. Zero means
	// entries stay valid until explicitly cleared.
	MaxAgeHours int `toml:"max_age_hours"`
}

// RetryConfig controls retry behavior for transient remote failures.
type RetryConfig struct {
	MaxAttempts int `toml:"max_attempts"`
	BaseDelayMS int `toml:"base_delay_ms"`
}

// MaxAge returns the cache staleness bound as a duration, zero for "never".
func (c CacheConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// BaseDelay returns the retry base delay as a duration.
func (c RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment variables override file credentials; a .env file in the working
// directory is honored if present.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	config.applyDefaults()
	config.applyEnv()

	for i, target := range config.Targets {
		if err := target.Validate(); err != nil {
			return nil, fmt.Errorf("%w: target %d (%s): %v", ErrInvalidConfig, i+1, target.Name, err)
		}
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.Targets = nil
	config.applyDefaults()
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Cache.Dir == "" {
		c.Cache.Dir = ".track_cache"
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 4
	}
	if c.Retry.BaseDelayMS <= 0 {
		c.Retry.BaseDelayMS = 500
	}
}

func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
}
