package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port   int    `yaml:"port" mapstructure:"port"`
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// FetchConfig configures the listing page fetcher.
type FetchConfig struct {
	TimeoutSecs  int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRedirects int `yaml:"max_redirects" mapstructure:"max_redirects"`
}

// GeocodeConfig configures the geocode resolver and its provider.
type GeocodeConfig struct {
	Provider         string  `yaml:"provider" mapstructure:"provider"`
	NominatimBaseURL string  `yaml:"nominatim_base_url" mapstructure:"nominatim_base_url"`
	MapboxBaseURL    string  `yaml:"mapbox_base_url" mapstructure:"mapbox_base_url"`
	MapboxToken      string  `yaml:"mapbox_token" mapstructure:"mapbox_token"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	RegionName       string  `yaml:"region_name" mapstructure:"region_name"`
	CountryCode      string  `yaml:"country_code" mapstructure:"country_code"`
	MinLat           float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat           float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLon           float64 `yaml:"min_lon" mapstructure:"min_lon"`
	MaxLon           float64 `yaml:"max_lon" mapstructure:"max_lon"`
	AttemptDelayMs   int     `yaml:"attempt_delay_ms" mapstructure:"attempt_delay_ms"`
	RequestsPerSec   float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// RateLimitConfig configures per-client request limits, counted over a fixed
// window and independent per endpoint class.
type RateLimitConfig struct {
	WindowSecs       int `yaml:"window_secs" mapstructure:"window_secs"`
	ReadPerWindow    int `yaml:"read_per_window" mapstructure:"read_per_window"`
	WritePerWindow   int `yaml:"write_per_window" mapstructure:"write_per_window"`
	GeocodePerWindow int `yaml:"geocode_per_window" mapstructure:"geocode_per_window"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LISTINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "listings.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_redirects", 5)
	v.SetDefault("geocode.provider", "nominatim")
	v.SetDefault("geocode.nominatim_base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.mapbox_base_url", "https://api.mapbox.com")
	v.SetDefault("geocode.user_agent", "listings-cli/1.0 (conlan-group)")
	v.SetDefault("geocode.region_name", "Maryland")
	v.SetDefault("geocode.country_code", "us")
	// Montgomery County, MD rough bounds.
	v.SetDefault("geocode.min_lat", 38.8)
	v.SetDefault("geocode.max_lat", 39.4)
	v.SetDefault("geocode.min_lon", -77.6)
	v.SetDefault("geocode.max_lon", -76.8)
	v.SetDefault("geocode.attempt_delay_ms", 500)
	v.SetDefault("geocode.requests_per_sec", 1)
	v.SetDefault("rate_limit.window_secs", 60)
	v.SetDefault("rate_limit.read_per_window", 60)
	v.SetDefault("rate_limit.write_per_window", 10)
	v.SetDefault("rate_limit.geocode_per_window", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
