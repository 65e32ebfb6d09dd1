package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Digital-Shane/library-tidy/internal/batch"
	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/spf13/viper"
)

// Environment variables that override the keys stored in the config file.
const (
	APIKeyEnv     = "OMDB_APIKEY"
	TMDBAPIKeyEnv = "TMDB_API_KEY"
	TVDBAPIKeyEnv = "TVDB_API_KEY"
)

// Metadata providers that can resolve ids.
const (
	ProviderOMDB = "omdb"
	ProviderTMDB = "tmdb"
	ProviderTVDB = "tvdb"
)

// Config holds user settings shared by the movies and series commands.
type Config struct {
	Provider           string   `json:"provider" mapstructure:"provider"`
	OMDBAPIKey         string   `json:"omdb_api_key" mapstructure:"omdb_api_key"`
	TMDBAPIKey         string   `json:"tmdb_api_key,omitempty" mapstructure:"tmdb_api_key"`
	TVDBAPIKey         string   `json:"tvdb_api_key,omitempty" mapstructure:"tvdb_api_key"`
	OMDBTimeoutSeconds int      `json:"omdb_timeout_seconds" mapstructure:"omdb_timeout_seconds"`
	RequestsPerSecond  int      `json:"requests_per_second" mapstructure:"requests_per_second"`
	MovieWorkers       int      `json:"movie_workers" mapstructure:"movie_workers"`
	SeriesWorkers      int      `json:"series_workers" mapstructure:"series_workers"`
	Extensions         []string `json:"extensions" mapstructure:"extensions"`
	Resolutions        []int    `json:"resolutions" mapstructure:"resolutions"`
	CacheTTLMinutes    int      `json:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
	EnableFFProbe      bool     `json:"enable_ffprobe" mapstructure:"enable_ffprobe"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:           ProviderOMDB,
		OMDBTimeoutSeconds: 10,
		RequestsPerSecond:  10,
		MovieWorkers:       batch.DefaultMovieWorkers,
		SeriesWorkers:      batch.DefaultSeriesWorkers,
		Extensions:         library.DefaultExtensions(),
		Resolutions:        library.DefaultResolutions(),
		CacheTTLMinutes:    60,
		EnableFFProbe:      true,
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".library-tidy", "config.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path. A missing file yields the
// defaults. OMDB_APIKEY, TMDB_API_KEY and TVDB_API_KEY, when set, replace
// the stored keys.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	for key, env := range map[string]string{
		"omdb_api_key": APIKeyEnv,
		"tmdb_api_key": TMDBAPIKeyEnv,
		"tvdb_api_key": TVDBAPIKeyEnv,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	defaults := DefaultConfig()
	v.SetDefault("provider", defaults.Provider)
	v.SetDefault("omdb_timeout_seconds", defaults.OMDBTimeoutSeconds)
	v.SetDefault("requests_per_second", defaults.RequestsPerSecond)
	v.SetDefault("movie_workers", defaults.MovieWorkers)
	v.SetDefault("series_workers", defaults.SeriesWorkers)
	v.SetDefault("extensions", defaults.Extensions)
	v.SetDefault("resolutions", defaults.Resolutions)
	v.SetDefault("cache_ttl_minutes", defaults.CacheTTLMinutes)
	v.SetDefault("enable_ffprobe", defaults.EnableFFProbe)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Zero values written to the file fall back to the defaults too.
	if cfg.OMDBTimeoutSeconds <= 0 {
		cfg.OMDBTimeoutSeconds = defaults.OMDBTimeoutSeconds
	}
	if cfg.MovieWorkers <= 0 {
		cfg.MovieWorkers = defaults.MovieWorkers
	}
	if cfg.SeriesWorkers <= 0 {
		cfg.SeriesWorkers = defaults.SeriesWorkers
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = defaults.Extensions
	}
	if len(cfg.Resolutions) == 0 {
		cfg.Resolutions = defaults.Resolutions
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = defaults.Provider
	}
	cfg.OMDBAPIKey = strings.TrimSpace(cfg.OMDBAPIKey)
	cfg.TMDBAPIKey = strings.TrimSpace(cfg.TMDBAPIKey)
	cfg.TVDBAPIKey = strings.TrimSpace(cfg.TVDBAPIKey)

	return cfg, nil
}

// Tables builds the immutable grammar tables from the configured lists.
func (cfg *Config) Tables() library.Tables {
	return library.NewTables(cfg.Extensions, cfg.Resolutions)
}

// OMDBTimeout is the per-request timeout of the metadata client.
func (cfg *Config) OMDBTimeout() time.Duration {
	return time.Duration(cfg.OMDBTimeoutSeconds) * time.Second
}

// CacheTTL is how long resolved lookups are kept during a run.
func (cfg *Config) CacheTTL() time.Duration {
	return time.Duration(cfg.CacheTTLMinutes) * time.Minute
}

// APIKey returns the key of the selected provider.
func (cfg *Config) APIKey() string {
	switch cfg.Provider {
	case ProviderTMDB:
		return cfg.TMDBAPIKey
	case ProviderTVDB:
		return cfg.TVDBAPIKey
	default:
		return cfg.OMDBAPIKey
	}
}

// SetAPIKey stores key for the selected provider.
func (cfg *Config) SetAPIKey(key string) {
	switch cfg.Provider {
	case ProviderTMDB:
		cfg.TMDBAPIKey = key
	case ProviderTVDB:
		cfg.TVDBAPIKey = key
	default:
		cfg.OMDBAPIKey = key
	}
}

// Validate reports settings the commands cannot work with.
func (cfg *Config) Validate() error {
	var name, field, env string
	switch cfg.Provider {
	case ProviderOMDB, "":
		name, field, env = "OMDb", "omdb_api_key", APIKeyEnv
	case ProviderTMDB:
		name, field, env = "TMDB", "tmdb_api_key", TMDBAPIKeyEnv
	case ProviderTVDB:
		name, field, env = "TVDB", "tvdb_api_key", TVDBAPIKeyEnv
	default:
		return fmt.Errorf("unknown provider %q: use %s, %s or %s", cfg.Provider, ProviderOMDB, ProviderTMDB, ProviderTVDB)
	}
	if cfg.APIKey() == "" {
		return fmt.Errorf("no %s API key: set %s in the config file or %s", name, field, env)
	}
	for _, h := range cfg.Resolutions {
		if h <= 0 {
			return fmt.Errorf("invalid resolution %d", h)
		}
	}
	return nil
}

// Save writes the configuration to the default path.
func (cfg *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return cfg.SaveFile(path)
}

// SaveFile writes the configuration to path as indented JSON.
func (cfg *Config) SaveFile(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Redacted returns a copy safe to print.
func (cfg *Config) Redacted() *Config {
	c := *cfg
	c.OMDBAPIKey = mask(c.OMDBAPIKey)
	c.TMDBAPIKey = mask(c.TMDBAPIKey)
	c.TVDBAPIKey = mask(c.TVDBAPIKey)
	return &c
}

func mask(key string) string {
	switch n := len(key); {
	case n > 4:
		return strings.Repeat("*", n-4) + key[n-4:]
	case n > 0:
		return "****"
	}
	return key
}
