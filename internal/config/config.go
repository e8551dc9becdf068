package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"

	ProviderMetNo     = "metno"
	ProviderOpenMeteo = "openmeteo"

	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreValkey = "valkey"
)

type AppConfig struct {
	Port string `yaml:"port"`

	// HTTPTimeout bounds each outbound call; LookupTimeout bounds a whole
	// geocode + fetch sequence.
	HTTPTimeout   time.Duration `yaml:"httpTimeout"`
	LookupTimeout time.Duration `yaml:"lookupTimeout"`

	UserAgent        string `yaml:"userAgent"`
	WeatherProvider  string `yaml:"weatherProvider"`
	MetNoBaseURL     string `yaml:"metnoBaseUrl"`
	OpenMeteoBaseURL string `yaml:"openMeteoBaseUrl"`
	NominatimBaseURL string `yaml:"nominatimBaseUrl"`

	Geocoder          string `yaml:"geocoder"`
	GoogleGeocoderKey string `yaml:"googleGeocoderApiKey"`
	DefaultLanguage   string `yaml:"defaultLanguage"`
	LogLevel          string `yaml:"logLevel"`

	StoreBackend      string        `yaml:"storeBackend"`
	SQLitePath        string        `yaml:"sqlitePath"`
	ValkeyAddr        string        `yaml:"valkeyAddr"`
	ValkeyPrefix      string        `yaml:"valkeyPrefix"`
	PreferencesMaxAge time.Duration `yaml:"preferencesMaxAge"`
	PruneInterval     time.Duration `yaml:"pruneInterval"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Port:              "8080",
		HTTPTimeout:       10 * time.Second,
		LookupTimeout:     20 * time.Second,
		UserAgent:         "weather-lookup/1.0",
		WeatherProvider:   ProviderMetNo,
		Geocoder:          GeocoderNominatim,
		DefaultLanguage:   "en",
		LogLevel:          "info",
		StoreBackend:      StoreMemory,
		SQLitePath:        "weather-lookup.db",
		ValkeyPrefix:      "weather-lookup",
		PreferencesMaxAge: 30 * 24 * time.Hour,
		PruneInterval:     time.Hour,
	}
}

// Load reads configuration from .env, an optional YAML file (CONFIG_PATH)
// and the environment, in increasing order of precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func hydrateFromFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *AppConfig) error {
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.UserAgent = getenvDefault("USER_AGENT", cfg.UserAgent)
	cfg.WeatherProvider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", cfg.WeatherProvider))
	cfg.MetNoBaseURL = getenvDefault("METNO_BASE_URL", cfg.MetNoBaseURL)
	cfg.OpenMeteoBaseURL = getenvDefault("OPENMETEO_BASE_URL", cfg.OpenMeteoBaseURL)
	cfg.NominatimBaseURL = getenvDefault("NOMINATIM_BASE_URL", cfg.NominatimBaseURL)
	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", cfg.Geocoder))
	cfg.GoogleGeocoderKey = getenvDefault("GOOGLE_GEOCODER_API_KEY", cfg.GoogleGeocoderKey)
	cfg.DefaultLanguage = strings.ToLower(getenvDefault("DEFAULT_LANGUAGE", cfg.DefaultLanguage))
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.StoreBackend = strings.ToLower(getenvDefault("STORE_BACKEND", cfg.StoreBackend))
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", cfg.SQLitePath)
	cfg.ValkeyAddr = getenvDefault("VALKEY_ADDR", cfg.ValkeyAddr)
	cfg.ValkeyPrefix = getenvDefault("VALKEY_PREFIX", cfg.ValkeyPrefix)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", &cfg.HTTPTimeout},
		{"LOOKUP_TIMEOUT", &cfg.LookupTimeout},
		{"PREFS_MAX_AGE", &cfg.PreferencesMaxAge},
		{"PRUNE_INTERVAL", &cfg.PruneInterval},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate checks that the selected backends are known and configured.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("httpTimeout must be positive"))
	}
	if c.LookupTimeout <= 0 {
		errs = append(errs, errors.New("lookupTimeout must be positive"))
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		errs = append(errs, errors.New("userAgent is required"))
	}

	switch c.WeatherProvider {
	case ProviderMetNo, ProviderOpenMeteo:
	default:
		errs = append(errs, fmt.Errorf("unknown weather provider %q", c.WeatherProvider))
	}

	switch c.Geocoder {
	case GeocoderNominatim:
	case GeocoderGoogle:
		if c.GoogleGeocoderKey == "" {
			errs = append(errs, errors.New("googleGeocoderApiKey is required for the google geocoder"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown geocoder %q", c.Geocoder))
	}

	switch c.StoreBackend {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlitePath is required for the sqlite store"))
		}
	case StoreValkey:
		if c.ValkeyAddr == "" {
			errs = append(errs, errors.New("valkeyAddr is required for the valkey store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.StoreBackend))
	}

	return errors.Join(errs...)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
